package planner

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// plannerAdapter wraps ServiceContainer and implements PlannerPort.
type plannerAdapter struct {
	container mono.ServiceContainer
}

// NewPlannerAdapter creates a new adapter for planner services.
func NewPlannerAdapter(container mono.ServiceContainer) PlannerPort {
	if container == nil {
		panic("planner adapter requires non-nil ServiceContainer")
	}
	return &plannerAdapter{container: container}
}

// Respond asks the respond service for a chat reply.
func (a *plannerAdapter) Respond(ctx context.Context, message string) (*RespondResponse, error) {
	req := RespondRequest{Message: message}
	var resp RespondResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"respond",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("respond service call failed: %w", err)
	}
	return &resp, nil
}
