package planner

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/jdkato/prose/v2"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// NoDetails is the entity block returned when nothing was recognized.
const NoDetails = "No specific details detected."

// Entities are the details recognized in a chat message.
type Entities struct {
	Date   string   `json:"date,omitempty"`
	Time   string   `json:"time,omitempty"`
	People []string `json:"people,omitempty"`
}

// Format renders e as the text block shown under a generated reply.
func (e Entities) Format() string {
	var b strings.Builder
	if len(e.People) > 0 {
		fmt.Fprintf(&b, "👤 Person(s): %s\n", strings.Join(e.People, ", "))
	}
	if e.Date != "" {
		fmt.Fprintf(&b, "📅 Date: %s\n", e.Date)
	}
	if e.Time != "" {
		fmt.Fprintf(&b, "⏰ Time: %s\n", e.Time)
	}
	if b.Len() == 0 {
		return NoDetails
	}
	return b.String()
}

// Extractor recognizes dates, times and people in free text.
type Extractor interface {
	Extract(ctx context.Context, text string) (Entities, error)
}

// isoDate recognizes YYYY-MM-DD, which the stock when rules leave out.
var isoDate = &rules.F{
	RegExp: regexp.MustCompile(`(?:\W|^)(\d{4}-\d{2}-\d{2})(?:\W|$)`),
	Applier: func(*rules.Match, *rules.Context, *rules.Options, time.Time) (bool, error) {
		return true, nil
	},
}

// RuleExtractor finds dates and times with the when natural-date parser and
// people with the prose named-entity recognizer. Dates and times are parsed
// separately so each keeps its own text; the first mention of each wins.
type RuleExtractor struct {
	dates  *when.Parser
	times  *when.Parser
	now    func() time.Time
	people func(text string) ([]string, error)
}

var _ Extractor = (*RuleExtractor)(nil)

// NewRuleExtractor creates an extractor backed by when and prose.
func NewRuleExtractor() *RuleExtractor {
	dates := when.New(nil)
	dates.Add(
		en.Weekday(rules.Override),
		en.CasualDate(rules.Override),
		en.ExactMonthDate(rules.Override),
		common.SlashDMY(rules.Override),
		isoDate,
	)

	times := when.New(nil)
	times.Add(
		en.CasualTime(rules.Override),
		en.Hour(rules.Override),
		en.HourMinute(rules.Override),
	)

	return &RuleExtractor{
		dates:  dates,
		times:  times,
		now:    time.Now,
		people: prosePeople,
	}
}

// Extract returns the entities found in text. On error it still returns
// whatever was recognized.
func (x *RuleExtractor) Extract(_ context.Context, text string) (Entities, error) {
	var (
		e    Entities
		errs []error
	)

	date, err := mention(x.dates, text, x.now())
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to parse date: %w", err))
	}
	e.Date = date

	clock, err := mention(x.times, text, x.now())
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to parse time: %w", err))
	}
	e.Time = clock

	people, err := x.people(text)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to extract people: %w", err))
	}
	e.People = people

	return e, errors.Join(errs...)
}

// mention returns the text p matched in text, without the surrounding
// separators the rules consume.
func mention(p *when.Parser, text string, base time.Time) (string, error) {
	if p == nil {
		return "", nil
	}
	r, err := p.Parse(text, base)
	if err != nil || r == nil {
		return "", err
	}
	return strings.TrimFunc(r.Text, func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	}), nil
}

func prosePeople(text string) ([]string, error) {
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}

	var people []string
	seen := make(map[string]bool)
	for _, ent := range doc.Entities() {
		if ent.Label != "PERSON" || seen[ent.Text] {
			continue
		}
		seen[ent.Text] = true
		people = append(people, ent.Text)
	}
	return people, nil
}
