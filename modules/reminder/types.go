package reminder

import "context"

// ListNotificationsRequest is the request for listing fired reminders.
// A zero Limit returns every retained notification.
type ListNotificationsRequest struct {
	Limit int `json:"limit,omitempty"`
}

// ListNotificationsResponse is the response for listing fired reminders.
type ListNotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
	Watching      int            `json:"watching"`
}

// ReminderPort defines the interface for reading fired reminders.
type ReminderPort interface {
	ListNotifications(ctx context.Context, limit int) (*ListNotificationsResponse, error)
}
