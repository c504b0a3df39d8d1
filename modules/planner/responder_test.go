package planner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/daily-planner/modules/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	reply    string
	err      error
	received []string
}

func (g *stubGenerator) Generate(_ context.Context, text string) (string, error) {
	g.received = append(g.received, text)
	return g.reply, g.err
}

type stubExtractor struct {
	entities Entities
	err      error
}

func (x *stubExtractor) Extract(context.Context, string) (Entities, error) {
	return x.entities, x.err
}

type stubLister struct {
	tasks []task.TaskResponse
	err   error
}

func (l *stubLister) ListTasks(context.Context) (*task.ListTasksResponse, error) {
	if l.err != nil {
		return nil, l.err
	}
	return &task.ListTasksResponse{Tasks: l.tasks, Total: len(l.tasks)}, nil
}

func first(int) int { return 0 }

func TestResponder_Basic(t *testing.T) {
	r := NewResponder(WithPicker(first))

	tests := []struct {
		message string
		want    string
		rule    string
	}{
		{"What is a chatbot?", "A chatbot is an AI program that interacts with users via text or voice.", "faq"},
		{"  how does a daily planner chatbot work?  ", "It schedules tasks, sets reminders, and organizes your day based on your inputs.", "faq"},
		{"features of a chatbot", "A chatbot can provide information, schedule tasks, answer FAQs, and interact naturally with users.", "faq"},
		{"Remind me to call mom", SchedulingReplies[0], "scheduling"},
		{"add a todo", SchedulingReplies[0], "scheduling"},
		{"thank you", GratitudeReply, "gratitude"},
		{"Thanks a lot!", GratitudeReply, "gratitude"},
		{"bye", FarewellReply, "farewell"},
		{"I want to quit", FarewellReply, "farewell"},
		{"hello there", GeneralReplies[0], "general"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			reply := r.Respond(context.Background(), tt.message)
			assert.Equal(t, tt.want, reply.Response)
			assert.Equal(t, tt.rule, reply.Rule)
			assert.Empty(t, reply.Entities)
		})
	}
}

func TestResponder_FAQIsExactMatch(t *testing.T) {
	r := NewResponder(WithPicker(first))

	reply := r.Respond(context.Background(), "so what is a chatbot?")
	assert.NotEqual(t, "faq", reply.Rule)
}

func TestResponder_RuleOrder(t *testing.T) {
	r := NewResponder(WithPicker(first))

	// Scheduling words win over gratitude and farewell.
	assert.Equal(t, "scheduling", r.Respond(context.Background(), "thanks for the plan").Rule)
	assert.Equal(t, "gratitude", r.Respond(context.Background(), "thank you, bye").Rule)
}

func TestResponder_PicksFromPools(t *testing.T) {
	for i := range GeneralReplies {
		r := NewResponder(WithPicker(func(n int) int {
			require.Equal(t, 3, n)
			return i
		}))
		assert.Equal(t, GeneralReplies[i], r.Respond(context.Background(), "hello").Response)
		assert.Equal(t, SchedulingReplies[i], r.Respond(context.Background(), "plan my day").Response)
	}
}

func TestResponder_DefaultPickerStaysInPool(t *testing.T) {
	r := NewResponder()
	for i := 0; i < 20; i++ {
		assert.Contains(t, GeneralReplies, r.Respond(context.Background(), "hello").Response)
	}
}

func TestResponder_GratitudeIgnoresStore(t *testing.T) {
	lister := &stubLister{err: errors.New("must not be called")}
	r := NewResponder(WithGenerator(&stubGenerator{reply: "hi"}, &stubExtractor{}, lister))

	reply := r.Respond(context.Background(), "thank you")
	assert.Equal(t, GratitudeReply, reply.Response)
}

func TestResponder_ExtendedScheduleEcho(t *testing.T) {
	gen := &stubGenerator{reply: "unused"}
	lister := &stubLister{tasks: []task.TaskResponse{
		{ID: 1, Task: "Exercise", Date: "Not specified", Time: "07:00", Priority: "High", Status: "overdue"},
		{ID: 2, Task: "Read", Date: "2024-03-02", Time: "21:00", Priority: "Low", Status: "pending"},
	}}
	r := NewResponder(WithGenerator(gen, &stubExtractor{}, lister))

	reply := r.Respond(context.Background(), "Show my schedule")
	assert.Equal(t, "schedule-echo", reply.Rule)
	assert.Equal(t, "Here is your schedule:\n"+
		"#1 Exercise at 07:00 (High, overdue)\n"+
		"#2 Read on 2024-03-02 at 21:00 (Low, pending)", reply.Response)
	assert.Empty(t, gen.received)

	empty := NewResponder(WithGenerator(gen, &stubExtractor{}, &stubLister{}))
	assert.Equal(t, NoTasksReply, empty.Respond(context.Background(), "any task?").Response)

	broken := NewResponder(WithGenerator(gen, &stubExtractor{}, &stubLister{err: errors.New("bus down")}))
	assert.True(t, strings.HasPrefix(broken.Respond(context.Background(), "tasks").Response, "Error reading your schedule"))
}

func TestResponder_ExtendedGenerator(t *testing.T) {
	gen := &stubGenerator{reply: "  Sounds like a busy day!  "}
	x := &stubExtractor{entities: Entities{Date: "tomorrow", Time: "7pm", People: []string{"John", "Mary"}}}
	r := NewResponder(WithGenerator(gen, x, &stubLister{}))

	reply := r.Respond(context.Background(), "Dinner with John and Mary tomorrow at 7pm")

	assert.Equal(t, "generator", reply.Rule)
	assert.Equal(t, "Sounds like a busy day!", reply.Response)
	assert.Equal(t, "👤 Person(s): John, Mary\n📅 Date: tomorrow\n⏰ Time: 7pm\n", reply.Entities)
	assert.Equal(t, []string{"dinner with john and mary tomorrow at 7pm"}, gen.received)
}

func TestResponder_ExtendedGeneratorFailures(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
		x    *stubExtractor
		want string
	}{
		{"generator error", &stubGenerator{err: errors.New("quota exceeded")}, &stubExtractor{}, "Error communicating with AI: quota exceeded"},
		{"empty generation", &stubGenerator{reply: "   "}, &stubExtractor{}, EmptyReply},
		{"extractor error", &stubGenerator{reply: "ok"}, &stubExtractor{err: errors.New("nlp down")}, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResponder(WithGenerator(tt.gen, tt.x, &stubLister{}))
			reply := r.Respond(context.Background(), "hello")
			assert.Equal(t, tt.want, reply.Response)
			assert.Equal(t, NoDetails, reply.Entities)
		})
	}
}

func TestResponder_ExtractorErrorKeepsPartialEntities(t *testing.T) {
	x := &stubExtractor{entities: Entities{Date: "tomorrow", Time: "7pm"}, err: errors.New("prose failed")}
	r := NewResponder(WithGenerator(&stubGenerator{reply: "ok"}, x, &stubLister{}))

	reply := r.Respond(context.Background(), "dinner tomorrow at 7pm")
	assert.Equal(t, "ok", reply.Response)
	assert.Equal(t, "📅 Date: tomorrow\n⏰ Time: 7pm\n", reply.Entities)
}

func TestResponder_SlowGeneratorBecomesErrorReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	// The client timeout is far above the responder's own deadline.
	gen := NewGeminiClient("k", "m", server.URL, time.Minute)
	r := NewResponder(
		WithGenerator(gen, &stubExtractor{}, &stubLister{}),
		WithTimeout(100*time.Millisecond),
	)

	start := time.Now()
	reply := r.Respond(context.Background(), "hello")

	assert.Less(t, time.Since(start), 3*time.Second)
	assert.Equal(t, "generator", reply.Rule)
	assert.True(t, strings.HasPrefix(reply.Response, "Error communicating with AI:"), reply.Response)
}

func TestResponder_Mode(t *testing.T) {
	assert.Equal(t, "basic", NewResponder().Mode())
	assert.Equal(t, "extended", NewResponder(WithGenerator(&stubGenerator{}, nil, nil)).Mode())
}
