package planner

import "context"

// RespondRequest is the request for a chat reply.
type RespondRequest struct {
	Message string `json:"message"`
}

// RespondResponse is the chat reply. Entities is only set on generated
// replies.
type RespondResponse struct {
	Response string `json:"response"`
	Entities string `json:"entities,omitempty"`
}

// PlannerPort defines the interface for the conversational responder.
type PlannerPort interface {
	Respond(ctx context.Context, message string) (*RespondResponse, error)
}
