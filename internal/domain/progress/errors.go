package progress

import (
	"errors"
	"fmt"
)

var (
	// ErrUserActivityNotFound indicates the record doesn't exist or belongs to someone else.
	ErrUserActivityNotFound = errors.New("user activity not found")
	// ErrAlreadyInList indicates the user already has an active record for the activity.
	ErrAlreadyInList = errors.New("activity already in your list")
	// ErrInvalidTransition indicates the operation isn't allowed from the current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrStepNotFound indicates a step number outside the activity's steps.
	ErrStepNotFound = errors.New("step not found")
	// ErrStaleRevision indicates the record changed between read and write.
	ErrStaleRevision = errors.New("user activity was modified by another request")
	// ErrInvalidInput indicates a malformed request.
	ErrInvalidInput = errors.New("invalid input")
)

// ConflictError reports the status of the record that blocked an add.
type ConflictError struct {
	Status Status
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s (status %s)", ErrAlreadyInList, e.Status)
}

func (e *ConflictError) Unwrap() error {
	return ErrAlreadyInList
}

// TransitionError names the rejected operation and the status it was attempted from.
type TransitionError struct {
	Op   string
	From Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s an activity that is %s", e.Op, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
