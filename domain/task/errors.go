package task

import "errors"

// Sentinel errors for task operations.
var (
	// ErrValidation is returned when a required field is missing or malformed.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned when no task has the requested ID.
	ErrNotFound = errors.New("task not found")
)

// ValidationError carries the client-facing reason a request was rejected.
// errors.Is(err, ErrValidation) reports true for it.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid returns a ValidationError with the given reason.
func Invalid(reason string) error {
	return &ValidationError{Reason: reason}
}
