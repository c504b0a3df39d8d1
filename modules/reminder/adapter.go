package reminder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// reminderAdapter wraps ServiceContainer and implements ReminderPort.
type reminderAdapter struct {
	container mono.ServiceContainer
}

// NewReminderAdapter creates a new adapter for reminder services.
func NewReminderAdapter(container mono.ServiceContainer) ReminderPort {
	if container == nil {
		panic("reminder adapter requires non-nil ServiceContainer")
	}
	return &reminderAdapter{container: container}
}

// ListNotifications lists fired reminders via the list-notifications service.
func (a *reminderAdapter) ListNotifications(ctx context.Context, limit int) (*ListNotificationsResponse, error) {
	req := ListNotificationsRequest{Limit: limit}
	var resp ListNotificationsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"list-notifications",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("list-notifications service call failed: %w", err)
	}
	return &resp, nil
}
