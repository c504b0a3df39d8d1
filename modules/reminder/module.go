package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/example/daily-planner/events"
	"github.com/example/daily-planner/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// seedTimeout bounds the initial reminder lookup against the task module.
const seedTimeout = 5 * time.Second

// ReminderModule watches reminder-enabled tasks and fires a notification
// when each one falls due. It learns about tasks from task events and runs
// a periodic scanner in the background.
type ReminderModule struct {
	scheduler *Scheduler
	interval  time.Duration
	now       func() time.Time
	taskPort  task.TaskPort
	logger    types.Logger

	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

// Compile-time interface checks.
var _ mono.Module = (*ReminderModule)(nil)
var _ mono.DependentModule = (*ReminderModule)(nil)
var _ mono.EventConsumerModule = (*ReminderModule)(nil)
var _ mono.ServiceProviderModule = (*ReminderModule)(nil)
var _ mono.HealthCheckableModule = (*ReminderModule)(nil)

// NewModule creates a reminder module scanning every interval.
func NewModule(interval time.Duration, logger types.Logger) *ReminderModule {
	return &ReminderModule{
		scheduler: NewScheduler(time.Local),
		interval:  interval,
		now:       time.Now,
		logger:    logger.WithModule("reminder"),
	}
}

// Name returns the module name.
func (m *ReminderModule) Name() string {
	return "reminder"
}

// Dependencies returns the modules this module depends on.
func (m *ReminderModule) Dependencies() []string {
	return []string{"task"}
}

// SetDependencyServiceContainer receives the task module's container.
func (m *ReminderModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "task" {
		m.taskPort = task.NewTaskAdapter(container)
	}
}

// RegisterEventConsumers subscribes to the task lifecycle events.
func (m *ReminderModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskAddedV1, m.handleTaskAdded, m); err != nil {
		return fmt.Errorf("failed to register TaskAdded consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", "TaskAdded, TaskUpdated, TaskCompleted, TaskDeleted")
	return nil
}

// RegisterServices registers request-reply services in the service container.
func (m *ReminderModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-notifications", json.Unmarshal, json.Marshal, m.listNotifications,
	); err != nil {
		return fmt.Errorf("failed to register list-notifications service: %w", err)
	}

	m.logger.Info("Registered services", "services", "list-notifications")
	return nil
}

func (m *ReminderModule) handleTaskAdded(_ context.Context, event events.TaskAddedEvent, _ *mono.Msg) error {
	m.scheduler.Track(event.Task)
	return nil
}

func (m *ReminderModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.scheduler.Track(event.Task)
	return nil
}

func (m *ReminderModule) handleTaskCompleted(_ context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	m.scheduler.Forget(event.TaskID)
	return nil
}

func (m *ReminderModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.scheduler.Forget(event.TaskID)
	return nil
}

// listNotifications handles the list-notifications service request.
func (m *ReminderModule) listNotifications(_ context.Context, req ListNotificationsRequest, _ *mono.Msg) (ListNotificationsResponse, error) {
	notifications := m.scheduler.Notifications()
	if req.Limit > 0 && len(notifications) > req.Limit {
		notifications = notifications[:req.Limit]
	}
	return ListNotificationsResponse{
		Notifications: notifications,
		Watching:      m.scheduler.Watching(),
	}, nil
}

// Start launches the background scanner.
func (m *ReminderModule) Start(_ context.Context) error {
	m.stopChan = make(chan struct{})
	m.doneChan = make(chan struct{})

	go m.run()

	m.logger.Info("Reminder scanner started", "interval", m.interval.String())
	return nil
}

// run seeds the watch list and then scans on every tick.
func (m *ReminderModule) run() {
	defer close(m.doneChan)

	m.seed()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.scan()
		}
	}
}

// seed arms reminders for tasks that already exist, such as rows in a
// SQLite file from an earlier run.
func (m *ReminderModule) seed() {
	if m.taskPort == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()

	m.scheduler.BeginSeed()
	resp, err := m.taskPort.ListReminders(ctx)
	if err != nil {
		m.scheduler.Seed(nil)
		m.logger.Warn("Failed to seed reminders", "error", err)
		return
	}

	snapshots := make([]events.TaskSnapshot, 0, len(resp.Reminders))
	for _, t := range resp.Reminders {
		snapshots = append(snapshots, events.TaskSnapshot{
			TaskID:    t.ID,
			Name:      t.Task,
			Date:      t.Date,
			Time:      t.Time,
			Priority:  t.Priority,
			Reminder:  t.Reminder,
			Status:    t.Status,
			CreatedAt: t.CreatedAt,
		})
	}
	m.scheduler.Seed(snapshots)
	m.logger.Info("Seeded reminders", "watching", m.scheduler.Watching())
}

func (m *ReminderModule) scan() {
	for _, n := range m.scheduler.Fire(m.now()) {
		m.logger.Info("Reminder fired",
			"task_id", n.TaskID,
			"task", n.Task,
			"due_at", n.DueAt.Format(time.RFC3339),
		)
	}
}

// Stop gracefully shuts down the background scanner.
func (m *ReminderModule) Stop(ctx context.Context) error {
	if m.stopChan == nil {
		return nil
	}

	m.stopOnce.Do(func() {
		close(m.stopChan)
	})

	select {
	case <-m.doneChan:
		m.logger.Info("Reminder scanner stopped")
	case <-ctx.Done():
		m.logger.Warn("Reminder scanner shutdown timeout exceeded")
		return ctx.Err()
	}
	return nil
}

// Health reports scanner state.
func (m *ReminderModule) Health(_ context.Context) mono.HealthStatus {
	if m.stopChan == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "scanner not started",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"watching": m.scheduler.Watching(),
			"interval": m.interval.String(),
		},
	}
}
