package task

import (
	"fmt"
	"sort"
	"sync"

	domain "github.com/example/daily-planner/domain/task"
)

// Repository persists task records. IDs are assigned by the Store, never by
// the repository. FindByID, Update and Delete wrap domain.ErrNotFound.
type Repository interface {
	Insert(task *domain.Task) error
	FindByID(id int64) (*domain.Task, error)
	Update(task *domain.Task) error
	Delete(id int64) error
	// FindAll returns every task ordered by ascending ID.
	FindAll() ([]*domain.Task, error)
	// MaxID returns the highest stored ID, or 0 when empty.
	MaxID() (int64, error)
	Close() error
}

// MemoryRepository provides in-memory task storage.
type MemoryRepository struct {
	tasks map[int64]*domain.Task
	mu    sync.RWMutex
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tasks: make(map[int64]*domain.Task),
	}
}

// Insert stores a copy of task.
func (r *MemoryRepository) Insert(task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[task.ID]; exists {
		return fmt.Errorf("task %d already exists", task.ID)
	}
	r.tasks[task.ID] = task.Clone()
	return nil
}

// FindByID returns a copy of the task with the given ID.
func (r *MemoryRepository) FindByID(id int64) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, found := r.tasks[id]
	if !found {
		return nil, fmt.Errorf("%w: %d", domain.ErrNotFound, id)
	}
	return task.Clone(), nil
}

// Update replaces the stored task with a copy of task.
func (r *MemoryRepository) Update(task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.tasks[task.ID]; !found {
		return fmt.Errorf("%w: %d", domain.ErrNotFound, task.ID)
	}
	r.tasks[task.ID] = task.Clone()
	return nil
}

// Delete removes a task by ID.
func (r *MemoryRepository) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.tasks[id]; !found {
		return fmt.Errorf("%w: %d", domain.ErrNotFound, id)
	}
	delete(r.tasks, id)
	return nil
}

// FindAll returns copies of all tasks ordered by ID.
func (r *MemoryRepository) FindAll() ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		result = append(result, task.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// MaxID returns the highest ID currently stored.
func (r *MemoryRepository) MaxID() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var highest int64
	for id := range r.tasks {
		if id > highest {
			highest = id
		}
	}
	return highest, nil
}

// Close is a no-op for the in-memory repository.
func (r *MemoryRepository) Close() error {
	return nil
}
