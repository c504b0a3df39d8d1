package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
// This is the adapter that implements the TaskPort interface.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// AddTask adds a task via the add-task service.
func (a *taskAdapter) AddTask(ctx context.Context, req *AddTaskRequest) (*TaskResponse, error) {
	return callTask(ctx, a.container, "add-task", req)
}

// ListTasks lists all tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context) (*ListTasksResponse, error) {
	var resp ListTasksResponse
	if err := call(ctx, a.container, "list-tasks", &ListTasksRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTask retrieves a task by ID via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, taskID int64) (*TaskResponse, error) {
	return callTask(ctx, a.container, "get-task", &GetTaskRequest{TaskID: taskID})
}

// CompleteTask marks a task as completed via the complete-task service.
func (a *taskAdapter) CompleteTask(ctx context.Context, taskID int64) (*TaskResponse, error) {
	return callTask(ctx, a.container, "complete-task", &CompleteTaskRequest{TaskID: taskID})
}

// DeleteTask deletes a task via the delete-task service and returns it.
func (a *taskAdapter) DeleteTask(ctx context.Context, taskID int64) (*TaskResponse, error) {
	return callTask(ctx, a.container, "delete-task", &DeleteTaskRequest{TaskID: taskID})
}

// UpdateTask updates a task via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error) {
	return callTask(ctx, a.container, "update-task", req)
}

// ListReminders lists reminder-enabled tasks via the list-reminders service.
func (a *taskAdapter) ListReminders(ctx context.Context) (*ListRemindersResponse, error) {
	var resp ListRemindersResponse
	if err := call(ctx, a.container, "list-reminders", &ListRemindersRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// callTask calls a single-task service and unwraps its Failure.
func callTask[Req any](ctx context.Context, container mono.ServiceContainer, service string, req *Req) (*TaskResponse, error) {
	var reply TaskReply
	if err := call(ctx, container, service, req, &reply); err != nil {
		return nil, err
	}
	if err := reply.Failure.Err(); err != nil {
		return nil, err
	}
	if reply.Task == nil {
		return nil, fmt.Errorf("%s service returned no task", service)
	}
	return reply.Task, nil
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}
