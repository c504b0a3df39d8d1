package task

import (
	"strings"
	"time"
)

// Status represents the stored state of a task.
// StatusOverdue is never stored; it is derived on read by EffectiveStatus.
type Status string

const (
	StatusPending   Status = "pending"
	StatusOverdue   Status = "overdue"
	StatusCompleted Status = "completed"
)

// Priority is the user-assigned importance of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// DateUnspecified is stored when a task is created without a date.
const DateUnspecified = "Not specified"

const (
	// DateLayout is the calendar date format sent by clients.
	DateLayout = "2006-01-02"
	// TimeLayout is the time-of-day format sent by clients.
	TimeLayout = "15:04"
	// CreatedAtLayout is the wire format of CreatedAt.
	CreatedAtLayout = "2006-01-02 15:04:05"
)

// Task is the core domain entity representing a scheduled to-do item.
type Task struct {
	ID          int64      `json:"id"`
	Name        string     `json:"task"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Priority    Priority   `json:"priority"`
	Reminder    bool       `json:"reminder"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ParsePriority matches s case-insensitively against the known priorities.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	}
	return "", false
}

// ParseTimeOfDay parses an HH:MM clock time.
func ParseTimeOfDay(s string) (time.Time, error) {
	return time.Parse(TimeLayout, strings.TrimSpace(s))
}

// DueAt returns the moment the task falls due in loc.
// The scheduled date is used when it is a valid YYYY-MM-DD date, otherwise
// the calendar date of createdAt. ok is false when the time is unparseable.
func DueAt(date, clock string, createdAt time.Time, loc *time.Location) (time.Time, bool) {
	tod, err := ParseTimeOfDay(clock)
	if err != nil {
		return time.Time{}, false
	}

	created := createdAt.In(loc)
	year, month, day := created.Date()
	if d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc); err == nil {
		year, month, day = d.Date()
	}

	return time.Date(year, month, day, tod.Hour(), tod.Minute(), 0, 0, loc), true
}

// DueAt returns the moment t falls due in loc.
func (t *Task) DueAt(loc *time.Location) (time.Time, bool) {
	return DueAt(t.Date, t.Time, t.CreatedAt, loc)
}

// EffectiveStatus returns the status a reader should see at now.
// A pending task whose due moment has passed reads as overdue; the due moment
// is fixed, so an overdue reading never reverts to pending on a later read.
func (t *Task) EffectiveStatus(now time.Time) Status {
	if t.Status != StatusPending {
		return t.Status
	}
	due, ok := t.DueAt(now.Location())
	if ok && now.After(due) {
		return StatusOverdue
	}
	return StatusPending
}

// Clone returns a copy that shares no memory with t.
func (t *Task) Clone() *Task {
	c := *t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}
