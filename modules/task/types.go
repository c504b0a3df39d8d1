package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/daily-planner/domain/task"
)

// Failure codes carried across the service boundary.
const (
	CodeValidation = "validation"
	CodeNotFound   = "not_found"
)

// Failure describes a rejected request. Replies carry it instead of a
// transport error so that callers can tell the error kinds apart.
type Failure struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Err converts f back into a domain error.
func (f *Failure) Err() error {
	if f == nil {
		return nil
	}
	switch f.Code {
	case CodeValidation:
		return domain.Invalid(f.Reason)
	case CodeNotFound:
		return domain.ErrNotFound
	default:
		return fmt.Errorf("task service failure %s: %s", f.Code, f.Reason)
	}
}

// failureFrom classifies err. It returns nil for errors of neither kind.
func failureFrom(err error) *Failure {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return &Failure{Code: CodeValidation, Reason: verr.Reason}
	case errors.Is(err, domain.ErrNotFound):
		return &Failure{Code: CodeNotFound, Reason: err.Error()}
	}
	return nil
}

// AddTaskRequest is the request for adding a task.
type AddTaskRequest struct {
	Task     string `json:"task"`
	Date     string `json:"date,omitempty"`
	Time     string `json:"time"`
	Priority string `json:"priority"`
	Reminder bool   `json:"reminder"`
}

// TaskReply is the reply of the single-task services.
type TaskReply struct {
	Task    *TaskResponse `json:"task,omitempty"`
	Failure *Failure      `json:"failure,omitempty"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	TaskID int64 `json:"task_id"`
}

// CompleteTaskRequest is the request for completing a task.
type CompleteTaskRequest struct {
	TaskID int64 `json:"task_id"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	TaskID int64 `json:"task_id"`
}

// UpdateTaskRequest is the request for a partial task update.
// Nil fields are left unchanged.
type UpdateTaskRequest struct {
	TaskID   int64   `json:"task_id"`
	Task     *string `json:"task,omitempty"`
	Date     *string `json:"date,omitempty"`
	Time     *string `json:"time,omitempty"`
	Priority *string `json:"priority,omitempty"`
	Reminder *bool   `json:"reminder,omitempty"`
}

// ListTasksRequest is the request for listing tasks.
type ListTasksRequest struct{}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// ListRemindersRequest is the request for listing reminder tasks.
type ListRemindersRequest struct{}

// ListRemindersResponse is the response for listing reminder tasks.
type ListRemindersResponse struct {
	Reminders []TaskResponse `json:"reminders"`
}

// TaskResponse is the response for a single task.
type TaskResponse struct {
	ID          int64      `json:"id"`
	Task        string     `json:"task"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Priority    string     `json:"priority"`
	Reminder    bool       `json:"reminder"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TaskPort defines the interface for task operations (hexagonal port).
// Errors wrap domain.ErrValidation or domain.ErrNotFound where they apply.
type TaskPort interface {
	AddTask(ctx context.Context, req *AddTaskRequest) (*TaskResponse, error)
	ListTasks(ctx context.Context) (*ListTasksResponse, error)
	GetTask(ctx context.Context, taskID int64) (*TaskResponse, error)
	CompleteTask(ctx context.Context, taskID int64) (*TaskResponse, error)
	DeleteTask(ctx context.Context, taskID int64) (*TaskResponse, error)
	UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error)
	ListReminders(ctx context.Context) (*ListRemindersResponse, error)
}
