package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/domain/progress"
)

// APIError represents an MCP tool error.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var (
		apiErr        *APIError
		conflictErr   *progress.ConflictError
		transitionErr *progress.TransitionError
	)
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.As(err, &conflictErr):
		return &APIError{Code: "ALREADY_IN_LIST", Message: "activity already in your list", Details: map[string]any{"status": conflictErr.Status},
			RecoveryHint: "Use the existing record from list_my_activities"}
	case errors.As(err, &transitionErr):
		return &APIError{Code: "INVALID_TRANSITION", Message: transitionErr.Error(), Details: map[string]any{"status": transitionErr.From},
			RecoveryHint: "Read stepwise://docs/lifecycle for valid transitions"}
	case errors.Is(err, progress.ErrStaleRevision):
		return &APIError{Code: "STALE_REVISION", Message: "record changed concurrently", RecoveryHint: "Reload and retry"}
	case errors.Is(err, progress.ErrStepNotFound):
		return &APIError{Code: "STEP_NOT_FOUND", Message: "step not found", RecoveryHint: "Step numbers start at 1"}
	case errors.Is(err, progress.ErrUserActivityNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "user activity not found", RecoveryHint: "Check the id with list_my_activities"}
	case errors.Is(err, catalog.ErrActivityNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "activity not found", RecoveryHint: "Check the id with list_catalog"}
	case errors.Is(err, progress.ErrInvalidInput), errors.Is(err, catalog.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	default:
		return nil
	}
}

// toolError converts a service error into the error a tool returns.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return &APIError{Code: "INTERNAL", Message: "internal error"}
}
