package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrActivityNotFound indicates the activity doesn't exist.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrInvalidInput indicates malformed activity input.
	ErrInvalidInput = errors.New("invalid activity input")
	// ErrUnauthorized indicates a non-admin attempted a catalog change.
	ErrUnauthorized = errors.New("admin role required")
)

// ValidationError names the field, and the step when relevant, that failed validation.
// StepIndex is 1-based; zero means the problem is on the activity itself.
type ValidationError struct {
	Field     string `json:"field"`
	StepIndex int    `json:"stepIndex,omitempty"`
	Message   string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.StepIndex > 0 {
		return fmt.Sprintf("step %d: %s", e.StepIndex, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
