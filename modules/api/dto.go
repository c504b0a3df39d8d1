package api

import (
	domain "github.com/example/daily-planner/domain/task"
	"github.com/example/daily-planner/modules/reminder"
	"github.com/example/daily-planner/modules/task"
)

// Response messages.
const (
	MsgTaskAdded     = "Task added successfully"
	MsgTaskCompleted = "Task marked as completed"
	MsgTaskUpdated   = "Task updated successfully!"
	MsgTaskDeleted   = "Task '%s' deleted successfully"

	ErrMsgTaskNotFound   = "Task not found"
	ErrMsgInvalidTaskID  = "Invalid task ID"
	ErrMsgInvalidBody    = "Invalid request body"
	ErrMsgInvalidMessage = "Invalid message format"
)

// AddTaskRequest is the HTTP request for adding a task.
type AddTaskRequest struct {
	Task     string `json:"task"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Priority string `json:"priority"`
	Reminder bool   `json:"reminder"`
}

// UpdateTaskRequest is the HTTP request for updating a task.
// Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Task     *string `json:"task"`
	Date     *string `json:"date"`
	Time     *string `json:"time"`
	Priority *string `json:"priority"`
	Reminder *bool   `json:"reminder"`
}

// ChatRequest is the body of POST /daily-planner and of each chat socket frame.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the responder reply.
type ChatResponse struct {
	Response string `json:"response"`
	Entities string `json:"entities,omitempty"`
}

// TaskJSON is the wire shape of a task.
type TaskJSON struct {
	ID          int64  `json:"id"`
	Task        string `json:"task"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Priority    string `json:"priority"`
	Reminder    bool   `json:"reminder"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// TaskMessageResponse carries a message and, for add and update, the task.
type TaskMessageResponse struct {
	Message string    `json:"message"`
	Task    *TaskJSON `json:"task,omitempty"`
}

// ScheduleResponse is the HTTP response for GET /schedule.
type ScheduleResponse struct {
	Tasks []TaskJSON `json:"tasks"`
}

// RemindersResponse is the HTTP response for GET /reminders.
type RemindersResponse struct {
	Reminders []TaskJSON `json:"reminders"`
}

// NotificationsResponse is the HTTP response for GET /notifications.
type NotificationsResponse struct {
	Notifications []reminder.Notification `json:"notifications"`
	Watching      int                     `json:"watching"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

func toTaskJSON(t *task.TaskResponse) TaskJSON {
	out := TaskJSON{
		ID:        t.ID,
		Task:      t.Task,
		Date:      t.Date,
		Time:      t.Time,
		Priority:  t.Priority,
		Reminder:  t.Reminder,
		Status:    t.Status,
		CreatedAt: t.CreatedAt.Local().Format(domain.CreatedAtLayout),
	}
	if t.CompletedAt != nil {
		out.CompletedAt = t.CompletedAt.Local().Format(domain.CreatedAtLayout)
	}
	return out
}

func toTaskJSONs(tasks []task.TaskResponse) []TaskJSON {
	out := make([]TaskJSON, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskJSON(&tasks[i]))
	}
	return out
}
