package task

import (
	"context"

	domain "github.com/example/daily-planner/domain/task"
	"github.com/example/daily-planner/events"
	"github.com/go-monolith/mono"
)

// addTask handles the add-task service request.
func (m *TaskModule) addTask(_ context.Context, req AddTaskRequest, _ *mono.Msg) (TaskReply, error) {
	t, err := m.store.Add(NewTask{
		Name:     req.Task,
		Date:     req.Date,
		Time:     req.Time,
		Priority: req.Priority,
		Reminder: req.Reminder,
	})
	if err != nil {
		return m.reject("add-task", err)
	}

	// Emit TaskAdded event using typed Publish method
	if m.eventBus != nil {
		event := events.TaskAddedEvent{Task: toSnapshot(t), AddedAt: t.CreatedAt}
		if err := events.TaskAddedV1.Publish(m.eventBus, event, nil); err != nil {
			// Event publishing is best-effort; log but don't fail the operation
			m.logger.Warn("Failed to publish TaskAdded event", "task_id", t.ID, "error", err)
		}
	}

	return replyWith(t), nil
}

// getTask handles the get-task service request.
func (m *TaskModule) getTask(_ context.Context, req GetTaskRequest, _ *mono.Msg) (TaskReply, error) {
	t, err := m.store.Get(req.TaskID)
	if err != nil {
		return m.reject("get-task", err)
	}
	return replyWith(t), nil
}

// listTasks handles the list-tasks service request.
func (m *TaskModule) listTasks(_ context.Context, _ ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.store.List()
	if err != nil {
		m.logger.Error("Failed to list tasks", "error", err)
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Tasks: toTaskResponses(tasks), Total: len(tasks)}, nil
}

// listReminders handles the list-reminders service request.
func (m *TaskModule) listReminders(_ context.Context, _ ListRemindersRequest, _ *mono.Msg) (ListRemindersResponse, error) {
	tasks, err := m.store.Reminders()
	if err != nil {
		m.logger.Error("Failed to list reminders", "error", err)
		return ListRemindersResponse{}, err
	}
	return ListRemindersResponse{Reminders: toTaskResponses(tasks)}, nil
}

// completeTask handles the complete-task service request.
func (m *TaskModule) completeTask(_ context.Context, req CompleteTaskRequest, _ *mono.Msg) (TaskReply, error) {
	t, changed, err := m.store.Complete(req.TaskID)
	if err != nil {
		return m.reject("complete-task", err)
	}

	if changed && m.eventBus != nil {
		event := events.TaskCompletedEvent{TaskID: t.ID, CompletedAt: *t.CompletedAt}
		if err := events.TaskCompletedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish TaskCompleted event", "task_id", t.ID, "error", err)
		}
	}

	return replyWith(t), nil
}

// deleteTask handles the delete-task service request.
func (m *TaskModule) deleteTask(_ context.Context, req DeleteTaskRequest, _ *mono.Msg) (TaskReply, error) {
	t, err := m.store.Delete(req.TaskID)
	if err != nil {
		return m.reject("delete-task", err)
	}

	if m.eventBus != nil {
		event := events.TaskDeletedEvent{TaskID: t.ID, Name: t.Name, DeletedAt: m.store.now()}
		if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish TaskDeleted event", "task_id", t.ID, "error", err)
		}
	}

	return replyWith(t), nil
}

// updateTask handles the update-task service request.
func (m *TaskModule) updateTask(_ context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskReply, error) {
	t, err := m.store.Update(req.TaskID, Patch{
		Name:     req.Task,
		Date:     req.Date,
		Time:     req.Time,
		Priority: req.Priority,
		Reminder: req.Reminder,
	})
	if err != nil {
		return m.reject("update-task", err)
	}

	if m.eventBus != nil {
		event := events.TaskUpdatedEvent{Task: toSnapshot(t), UpdatedAt: m.store.now()}
		if err := events.TaskUpdatedV1.Publish(m.eventBus, event, nil); err != nil {
			m.logger.Warn("Failed to publish TaskUpdated event", "task_id", t.ID, "error", err)
		}
	}

	return replyWith(t), nil
}

// reject turns a validation or not-found error into a Failure reply.
// Any other error is returned as is.
func (m *TaskModule) reject(service string, err error) (TaskReply, error) {
	if f := failureFrom(err); f != nil {
		m.logger.Debug("Task request rejected", "service", service, "code", f.Code, "reason", f.Reason)
		return TaskReply{Failure: f}, nil
	}
	m.logger.Error("Task request failed", "service", service, "error", err)
	return TaskReply{}, err
}

func replyWith(t *domain.Task) TaskReply {
	resp := toTaskResponse(t)
	return TaskReply{Task: &resp}
}

// toTaskResponse converts a domain Task to a TaskResponse.
func toTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Task:        t.Name,
		Date:        t.Date,
		Time:        t.Time,
		Priority:    string(t.Priority),
		Reminder:    t.Reminder,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}

func toTaskResponses(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}

func toSnapshot(t *domain.Task) events.TaskSnapshot {
	return events.TaskSnapshot{
		TaskID:    t.ID,
		Name:      t.Name,
		Date:      t.Date,
		Time:      t.Time,
		Priority:  string(t.Priority),
		Reminder:  t.Reminder,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
}
