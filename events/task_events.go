package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskSnapshot is the task state carried by every task event.
type TaskSnapshot struct {
	TaskID    int64     `json:"task_id"`
	Name      string    `json:"task"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Priority  string    `json:"priority"`
	Reminder  bool      `json:"reminder"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskAddedEvent is emitted when a new task is added to the schedule.
type TaskAddedEvent struct {
	Task    TaskSnapshot `json:"task"`
	AddedAt time.Time    `json:"added_at"`
}

// TaskAddedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-added
var TaskAddedV1 = helper.EventDefinition[TaskAddedEvent](
	"task", "TaskAdded", "v1",
)

// TaskUpdatedEvent is emitted after a partial update is applied.
type TaskUpdatedEvent struct {
	Task      TaskSnapshot `json:"task"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// TaskUpdatedV1 is the typed event definition for task updates.
// Subject: events.task.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
	"task", "TaskUpdated", "v1",
)

// TaskCompletedEvent is emitted when a task is marked complete.
type TaskCompletedEvent struct {
	TaskID      int64     `json:"task_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// TaskCompletedV1 is the typed event definition for task completion.
// Subject: events.task.v1.task-completed
var TaskCompletedV1 = helper.EventDefinition[TaskCompletedEvent](
	"task", "TaskCompleted", "v1",
)

// TaskDeletedEvent is emitted when a task is deleted.
type TaskDeletedEvent struct {
	TaskID    int64     `json:"task_id"`
	Name      string    `json:"task"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)
