package reminder

import (
	"fmt"
	"sort"
	"sync"
	"time"

	domain "github.com/example/daily-planner/domain/task"
	"github.com/example/daily-planner/events"
	"github.com/google/uuid"
)

// maxNotifications bounds the fired-notification history.
const maxNotifications = 200

// Notification records one fired reminder.
type Notification struct {
	ID      string    `json:"id"`
	TaskID  int64     `json:"task_id"`
	Task    string    `json:"task"`
	Message string    `json:"message"`
	DueAt   time.Time `json:"due_at"`
	FiredAt time.Time `json:"fired_at"`
}

type watch struct {
	taskID int64
	name   string
	clock  string
	due    time.Time
}

// Scheduler keeps the reminder watch list and fires due reminders.
// Each (task, due moment) pair fires at most once; moving the due moment
// arms the task again.
type Scheduler struct {
	mu      sync.Mutex
	loc     *time.Location
	watches map[int64]watch
	fired   map[int64]time.Time
	history []Notification

	// seeding is set between BeginSeed and Seed; touched then records the
	// tasks events changed in the meantime.
	seeding bool
	touched map[int64]bool
}

// NewScheduler creates an empty scheduler that computes due moments in loc.
func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		loc:     loc,
		watches: make(map[int64]watch),
		fired:   make(map[int64]time.Time),
		touched: make(map[int64]bool),
	}
}

// Track adds, re-arms or drops a task based on its latest state.
func (s *Scheduler) Track(task events.TaskSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch(task.TaskID)
	s.trackLocked(task)
}

// BeginSeed marks the start of a bulk load. Tasks that Track or Forget
// change before the matching Seed keep their event-driven state.
func (s *Scheduler) BeginSeed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seeding = true
	clear(s.touched)
}

// Seed tracks tasks read before or during the bulk load, skipping any that
// an event changed since BeginSeed. It returns how many were applied.
func (s *Scheduler) Seed(tasks []events.TaskSnapshot) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	applied := 0
	for _, t := range tasks {
		if s.touched[t.TaskID] {
			continue
		}
		s.trackLocked(t)
		applied++
	}
	s.seeding = false
	clear(s.touched)
	return applied
}

func (s *Scheduler) touch(taskID int64) {
	if s.seeding {
		s.touched[taskID] = true
	}
}

func (s *Scheduler) trackLocked(task events.TaskSnapshot) {
	if !task.Reminder || task.Status == string(domain.StatusCompleted) {
		delete(s.watches, task.TaskID)
		return
	}

	due, ok := domain.DueAt(task.Date, task.Time, task.CreatedAt, s.loc)
	if !ok {
		delete(s.watches, task.TaskID)
		return
	}
	if last, done := s.fired[task.TaskID]; done && last.Equal(due) {
		delete(s.watches, task.TaskID)
		return
	}

	s.watches[task.TaskID] = watch{
		taskID: task.TaskID,
		name:   task.Name,
		clock:  task.Time,
		due:    due,
	}
}

// Forget drops a task from the watch list.
func (s *Scheduler) Forget(taskID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch(taskID)
	delete(s.watches, taskID)
	delete(s.fired, taskID)
}

// Fire emits a notification for every watched task due at or before now,
// ordered by due moment, and removes those tasks from the watch list.
func (s *Scheduler) Fire(now time.Time) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []watch
	for _, w := range s.watches {
		if !now.Before(w.due) {
			due = append(due, w)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].taskID < due[j].taskID
		}
		return due[i].due.Before(due[j].due)
	})

	fired := make([]Notification, 0, len(due))
	for _, w := range due {
		n := Notification{
			ID:      uuid.New().String(),
			TaskID:  w.taskID,
			Task:    w.name,
			Message: fmt.Sprintf("Reminder: '%s' is due at %s", w.name, w.clock),
			DueAt:   w.due,
			FiredAt: now,
		}
		fired = append(fired, n)
		s.history = append(s.history, n)
		s.fired[w.taskID] = w.due
		delete(s.watches, w.taskID)
	}
	if extra := len(s.history) - maxNotifications; extra > 0 {
		s.history = append([]Notification(nil), s.history[extra:]...)
	}
	return fired
}

// Watching returns the number of armed reminders.
func (s *Scheduler) Watching() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watches)
}

// Notifications returns fired notifications, newest first.
func (s *Scheduler) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, len(s.history))
	for i, n := range s.history {
		out[len(s.history)-1-i] = n
	}
	return out
}
