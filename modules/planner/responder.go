package planner

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	domain "github.com/example/daily-planner/domain/task"
	"github.com/example/daily-planner/modules/task"
)

// Fixed replies.
const (
	GratitudeReply = "You're welcome! Let me know if you need more planning help. 😊"
	FarewellReply  = "Goodbye! Have a productive day. 🏆"
	EmptyReply     = "Sorry, I couldn't process that. Try rephrasing!"
	NoTasksReply   = "You have no tasks scheduled."
)

var faq = map[string]string{
	"what is a chatbot?":                     "A chatbot is an AI program that interacts with users via text or voice.",
	"how does a daily planner chatbot work?": "It schedules tasks, sets reminders, and organizes your day based on your inputs.",
	"features of a chatbot":                  "A chatbot can provide information, schedule tasks, answer FAQs, and interact naturally with users.",
}

// SchedulingReplies answer messages with scheduling intent.
var SchedulingReplies = []string{
	"I can help you schedule that! Click the 'Add to Schedule' button below to set the time and priority. ✅",
	"I'll help you plan that! Use the scheduling form below to set the details. 🗓",
	"Great idea! Click 'Add to Schedule' below to set when you'd like to do this. ⏰",
}

// GeneralReplies answer anything the other rules do not match.
var GeneralReplies = []string{
	"How can I assist with your daily planning?",
	"Need help organizing your day? Let me know your tasks!",
	"I'm here to help you schedule tasks and set reminders!",
}

var (
	schedulingWords = []string{"schedule", "remind", "plan", "set", "task", "todo"}
	echoWords       = []string{"schedule", "task"}
	farewellWords   = []string{"bye", "exit", "quit"}
)

// TaskLister is the part of the task port the responder reads.
type TaskLister interface {
	ListTasks(ctx context.Context) (*task.ListTasksResponse, error)
}

// Reply is the responder's answer to one message.
type Reply struct {
	Response string
	// Entities is set only when the reply came from the generator.
	Entities string
	// Rule names the rule that produced the reply.
	Rule string
}

// rule is one step of the resolution order. match reports whether the rule
// applies to the normalized message; reply builds the answer.
type rule struct {
	name  string
	match func(normalized string) bool
	reply func(ctx context.Context, raw, normalized string) Reply
}

// Responder maps a chat message to a reply by evaluating its rules in order.
// It keeps no state between messages.
type Responder struct {
	rules     []rule
	tasks     TaskLister
	generator Generator
	extractor Extractor
	timeout   time.Duration
	pick      func(n int) int
}

// Option configures a Responder.
type Option func(*Responder)

// WithGenerator enables the extended fallback. Messages that mention a
// schedule or task echo the task list, and everything unmatched goes to the
// generator with the entities recognized by x.
func WithGenerator(g Generator, x Extractor, tasks TaskLister) Option {
	return func(r *Responder) {
		r.generator = g
		r.extractor = x
		r.tasks = tasks
	}
}

// WithPicker replaces the random choice over reply pools. pick returns an
// index in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(r *Responder) {
		r.pick = pick
	}
}

// WithTimeout bounds each extended fallback, extraction and generation
// together. A slow generator then becomes an error reply instead of
// outliving the caller.
func WithTimeout(d time.Duration) Option {
	return func(r *Responder) {
		r.timeout = d
	}
}

// NewResponder builds a responder. Without WithGenerator it runs in basic
// mode.
func NewResponder(opts ...Option) *Responder {
	r := &Responder{pick: rand.IntN}
	for _, opt := range opts {
		opt(r)
	}

	r.rules = append(r.rules, rule{
		name:  "faq",
		match: func(msg string) bool { _, ok := faq[msg]; return ok },
		reply: func(_ context.Context, _, msg string) Reply { return Reply{Response: faq[msg]} },
	})
	if r.extended() {
		r.rules = append(r.rules, rule{
			name:  "schedule-echo",
			match: containsAny(echoWords),
			reply: func(ctx context.Context, _, _ string) Reply { return Reply{Response: r.schedule(ctx)} },
		})
	}
	r.rules = append(r.rules,
		rule{
			name:  "scheduling",
			match: containsAny(schedulingWords),
			reply: r.fromPool(SchedulingReplies),
		},
		rule{
			name:  "gratitude",
			match: containsAny([]string{"thank"}),
			reply: fixed(GratitudeReply),
		},
		rule{
			name:  "farewell",
			match: containsAny(farewellWords),
			reply: fixed(FarewellReply),
		},
	)
	return r
}

// Respond returns the reply for message. It never fails: generator errors
// become the reply text.
func (r *Responder) Respond(ctx context.Context, message string) Reply {
	normalized := Normalize(message)
	for _, rl := range r.rules {
		if rl.match(normalized) {
			reply := rl.reply(ctx, message, normalized)
			reply.Rule = rl.name
			return reply
		}
	}
	if r.extended() {
		reply := r.generate(ctx, message, normalized)
		reply.Rule = "generator"
		return reply
	}
	reply := r.fromPool(GeneralReplies)(ctx, message, normalized)
	reply.Rule = "general"
	return reply
}

// Mode returns "extended" when a generator is configured, otherwise "basic".
func (r *Responder) Mode() string {
	if r.extended() {
		return "extended"
	}
	return "basic"
}

// Normalize lowercases and trims a message for rule matching.
func Normalize(message string) string {
	return strings.ToLower(strings.TrimSpace(message))
}

func (r *Responder) extended() bool {
	return r.generator != nil
}

func (r *Responder) generate(ctx context.Context, raw, normalized string) Reply {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	// Extraction errors still leave the recognized part usable.
	entities := NoDetails
	if r.extractor != nil {
		found, _ := r.extractor.Extract(ctx, raw)
		entities = found.Format()
	}

	text, err := r.generator.Generate(ctx, normalized)
	if err != nil {
		text = fmt.Sprintf("Error communicating with AI: %v", err)
	} else if strings.TrimSpace(text) == "" {
		text = EmptyReply
	}
	return Reply{Response: strings.TrimSpace(text), Entities: entities}
}

// schedule renders the current task list, one line per task.
func (r *Responder) schedule(ctx context.Context) string {
	if r.tasks == nil {
		return NoTasksReply
	}
	list, err := r.tasks.ListTasks(ctx)
	if err != nil {
		return fmt.Sprintf("Error reading your schedule: %v", err)
	}
	if len(list.Tasks) == 0 {
		return NoTasksReply
	}

	var b strings.Builder
	b.WriteString("Here is your schedule:")
	for _, t := range list.Tasks {
		fmt.Fprintf(&b, "\n#%d %s", t.ID, t.Task)
		if t.Date != "" && t.Date != domain.DateUnspecified {
			fmt.Fprintf(&b, " on %s", t.Date)
		}
		fmt.Fprintf(&b, " at %s (%s, %s)", t.Time, t.Priority, t.Status)
	}
	return b.String()
}

func (r *Responder) fromPool(pool []string) func(context.Context, string, string) Reply {
	return func(context.Context, string, string) Reply {
		return Reply{Response: pool[r.pick(len(pool))]}
	}
}

func fixed(text string) func(context.Context, string, string) Reply {
	return func(context.Context, string, string) Reply {
		return Reply{Response: text}
	}
}

func containsAny(words []string) func(string) bool {
	return func(msg string) bool {
		for _, w := range words {
			if strings.Contains(msg, w) {
				return true
			}
		}
		return false
	}
}
