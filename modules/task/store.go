package task

import (
	"fmt"
	"strings"
	"sync"
	"time"

	domain "github.com/example/daily-planner/domain/task"
)

// Validation reasons returned to clients.
const (
	ReasonMissingDetails  = "Missing task details"
	ReasonInvalidTime     = "Invalid time format, expected HH:MM"
	ReasonInvalidPriority = "Invalid priority, expected Low, Medium or High"
	ReasonEmptyName       = "Task name cannot be empty"
)

// NewTask holds the fields accepted when a task is added.
type NewTask struct {
	Name     string
	Date     string
	Time     string
	Priority string
	Reminder bool
}

// Patch holds the fields of a partial update. Nil fields are left untouched.
type Patch struct {
	Name     *string
	Date     *string
	Time     *string
	Priority *string
	Reminder *bool
}

// Store is the task lifecycle engine. Every operation holds a single mutex,
// so mutations are atomic with respect to each other. IDs come from a
// counter that never hands out the same value twice in a process.
type Store struct {
	mu     sync.Mutex
	repo   Repository
	nextID int64
	now    func() time.Time
}

// NewStore creates a store over repo. The ID counter resumes after the
// highest ID already stored. now defaults to time.Now.
func NewStore(repo Repository, now func() time.Time) (*Store, error) {
	if now == nil {
		now = time.Now
	}
	highest, err := repo.MaxID()
	if err != nil {
		return nil, fmt.Errorf("failed to seed task ids: %w", err)
	}
	return &Store{repo: repo, nextID: highest, now: now}, nil
}

// Add validates fields and stores a new pending task.
func (s *Store) Add(fields NewTask) (*domain.Task, error) {
	name := strings.TrimSpace(fields.Name)
	clock := strings.TrimSpace(fields.Time)
	if name == "" || clock == "" || strings.TrimSpace(fields.Priority) == "" {
		return nil, domain.Invalid(ReasonMissingDetails)
	}
	if _, err := domain.ParseTimeOfDay(clock); err != nil {
		return nil, domain.Invalid(ReasonInvalidTime)
	}
	priority, ok := domain.ParsePriority(fields.Priority)
	if !ok {
		return nil, domain.Invalid(ReasonInvalidPriority)
	}

	date := strings.TrimSpace(fields.Date)
	if date == "" {
		date = domain.DateUnspecified
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &domain.Task{
		ID:        s.nextID + 1,
		Name:      name,
		Date:      date,
		Time:      clock,
		Priority:  priority,
		Reminder:  fields.Reminder,
		Status:    domain.StatusPending,
		CreatedAt: s.now().Truncate(time.Second),
	}
	if err := s.repo.Insert(t); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	s.nextID = t.ID

	return s.view(t), nil
}

// List returns every task with its status evaluated at the current time.
func (s *Store) List() ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listLocked(func(*domain.Task) bool { return true })
}

// Reminders returns the tasks that have a reminder enabled, in any status.
func (s *Store) Reminders() ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listLocked(func(t *domain.Task) bool { return t.Reminder })
}

// Get returns one task with its status evaluated at the current time.
func (s *Store) Get(id int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	return s.view(t), nil
}

// Complete marks a task completed. Completing an already completed task
// succeeds and reports changed as false.
func (s *Store) Complete(id int64) (task *domain.Task, changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.repo.FindByID(id)
	if err != nil {
		return nil, false, err
	}
	if t.Status == domain.StatusCompleted {
		return s.view(t), false, nil
	}

	now := s.now().Truncate(time.Second)
	t.Status = domain.StatusCompleted
	t.CompletedAt = &now
	if err := s.repo.Update(t); err != nil {
		return nil, false, fmt.Errorf("failed to complete task: %w", err)
	}
	return s.view(t), true, nil
}

// Delete removes a task and returns it as it was before removal.
func (s *Store) Delete(id int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(id); err != nil {
		return nil, err
	}
	return s.view(t), nil
}

// Update applies the non-nil fields of p. ID, status and createdAt are never
// touched.
func (s *Store) Update(id int64, p Patch) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, domain.Invalid(ReasonEmptyName)
		}
		t.Name = name
	}
	if p.Date != nil {
		date := strings.TrimSpace(*p.Date)
		if date == "" {
			date = domain.DateUnspecified
		}
		t.Date = date
	}
	if p.Time != nil {
		clock := strings.TrimSpace(*p.Time)
		if _, err := domain.ParseTimeOfDay(clock); err != nil {
			return nil, domain.Invalid(ReasonInvalidTime)
		}
		t.Time = clock
	}
	if p.Priority != nil {
		priority, ok := domain.ParsePriority(*p.Priority)
		if !ok {
			return nil, domain.Invalid(ReasonInvalidPriority)
		}
		t.Priority = priority
	}
	if p.Reminder != nil {
		t.Reminder = *p.Reminder
	}

	if err := s.repo.Update(t); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return s.view(t), nil
}

// Ping reports whether the backing repository is reachable.
func (s *Store) Ping() error {
	if p, ok := s.repo.(interface{ Ping() error }); ok {
		return p.Ping()
	}
	return nil
}

func (s *Store) listLocked(keep func(*domain.Task) bool) ([]*domain.Task, error) {
	all, err := s.repo.FindAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	result := make([]*domain.Task, 0, len(all))
	for _, t := range all {
		if keep(t) {
			result = append(result, s.view(t))
		}
	}
	return result, nil
}

// view returns a copy of t carrying the status a reader sees now. The
// stored record is never changed by a read.
func (s *Store) view(t *domain.Task) *domain.Task {
	v := t.Clone()
	v.Status = t.EffectiveStatus(s.now())
	return v
}
