package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/daily-planner/config"
	"github.com/example/daily-planner/modules/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// PlannerModule serves the conversational responder.
type PlannerModule struct {
	cfg       config.PlannerConfig
	taskPort  task.TaskPort
	responder *Responder
	logger    types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*PlannerModule)(nil)
var _ mono.DependentModule = (*PlannerModule)(nil)
var _ mono.ServiceProviderModule = (*PlannerModule)(nil)
var _ mono.HealthCheckableModule = (*PlannerModule)(nil)

// NewModule creates a planner module for cfg.
func NewModule(cfg config.PlannerConfig, logger types.Logger) *PlannerModule {
	return &PlannerModule{
		cfg:    cfg,
		logger: logger.WithModule("planner"),
	}
}

// Name returns the module name.
func (m *PlannerModule) Name() string {
	return "planner"
}

// Dependencies returns the modules this module depends on.
func (m *PlannerModule) Dependencies() []string {
	return []string{"task"}
}

// SetDependencyServiceContainer receives the task module's container.
func (m *PlannerModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "task" {
		m.taskPort = task.NewTaskAdapter(container)
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *PlannerModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "respond", json.Unmarshal, json.Marshal, m.respond,
	); err != nil {
		return fmt.Errorf("failed to register respond service: %w", err)
	}

	m.logger.Info("Registered services", "services", "respond")
	return nil
}

// Start builds the responder for the configured mode.
func (m *PlannerModule) Start(_ context.Context) error {
	switch m.cfg.Mode {
	case config.ModeExtended:
		if m.taskPort == nil {
			return fmt.Errorf("taskPort dependency not set")
		}
		generator := NewGeminiClient(m.cfg.APIKey, m.cfg.Model, m.cfg.BaseURL, m.cfg.Timeout)
		m.responder = NewResponder(
			WithGenerator(generator, NewRuleExtractor(), m.taskPort),
			WithTimeout(m.cfg.Timeout),
		)
	case config.ModeBasic, "":
		m.responder = NewResponder()
	default:
		return fmt.Errorf("unknown planner mode %q", m.cfg.Mode)
	}

	m.logger.Info("Module started", "mode", m.responder.Mode(), "model", m.cfg.Model)
	return nil
}

// Stop stops the module.
func (m *PlannerModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}

// Health reports the responder mode.
func (m *PlannerModule) Health(_ context.Context) mono.HealthStatus {
	if m.responder == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "responder not initialized",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"mode": m.responder.Mode(),
		},
	}
}

// respond handles the respond service request.
func (m *PlannerModule) respond(ctx context.Context, req RespondRequest, _ *mono.Msg) (RespondResponse, error) {
	reply := m.responder.Respond(ctx, req.Message)
	m.logger.Debug("Chat reply", "rule", reply.Rule)
	return RespondResponse{
		Response: reply.Response,
		Entities: reply.Entities,
	}, nil
}
