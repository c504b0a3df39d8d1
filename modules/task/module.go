package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/daily-planner/config"
	"github.com/example/daily-planner/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// TaskModule provides task management services (core domain).
type TaskModule struct {
	storage  config.StorageConfig
	repo     Repository
	store    *Store
	now      func() time.Time
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a task module backed by the configured storage driver.
func NewModule(storage config.StorageConfig, logger types.Logger) *TaskModule {
	return &TaskModule{
		storage: storage,
		now:     time.Now,
		logger:  logger.WithModule("task"),
	}
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// SetEventBus is called by the framework to inject the event bus.
func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskAddedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskCompletedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "add-task", json.Unmarshal, json.Marshal, m.addTask,
	); err != nil {
		return fmt.Errorf("failed to register add-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "complete-task", json.Unmarshal, json.Marshal, m.completeTask,
	); err != nil {
		return fmt.Errorf("failed to register complete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-reminders", json.Unmarshal, json.Marshal, m.listReminders,
	); err != nil {
		return fmt.Errorf("failed to register list-reminders service: %w", err)
	}

	m.logger.Info("Registered services",
		"services", "add-task, list-tasks, get-task, complete-task, delete-task, update-task, list-reminders")
	return nil
}

// Start opens the repository and seeds the store.
func (m *TaskModule) Start(_ context.Context) error {
	repo, err := openRepository(m.storage)
	if err != nil {
		return err
	}

	store, err := NewStore(repo, m.now)
	if err != nil {
		_ = repo.Close()
		return err
	}

	m.repo = repo
	m.store = store

	if m.eventBus == nil {
		m.logger.Warn("Event bus not set, events will not be published")
	}
	m.logger.Info("Module started", "driver", m.storage.Driver)
	return nil
}

// Stop closes the repository.
func (m *TaskModule) Stop(_ context.Context) error {
	if m.repo == nil {
		return nil
	}
	if err := m.repo.Close(); err != nil {
		return fmt.Errorf("failed to close task repository: %w", err)
	}
	m.logger.Info("Module stopped")
	return nil
}

// Health reports whether the store is initialized and its repository reachable.
func (m *TaskModule) Health(_ context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "store not initialized",
		}
	}

	if err := m.store.Ping(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("repository ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": m.storage.Driver,
		},
	}
}

func openRepository(storage config.StorageConfig) (Repository, error) {
	switch storage.Driver {
	case config.DriverMemory, "":
		return NewMemoryRepository(), nil
	case config.DriverSQLite:
		return OpenSQLite(storage.DSN, storage.Debug)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", storage.Driver)
	}
}
