package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrSelfApplication      = errors.New("you cannot apply to your own team")
	ErrDuplicateApplication = errors.New("you have already applied to this team")
)

// ValidationError reports a missing or malformed field. It is raised before
// anything is written to the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// AuthorizationError is returned when the acting user does not own the
// resource they are trying to change.
type AuthorizationError struct {
	ActorID string
	Action  string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %q is not allowed to %s", e.ActorID, e.Action)
}

// InvalidTransitionError is returned when an application that was already
// decided is decided again.
type InvalidTransitionError struct {
	From ApplicationStatus
	To   ApplicationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("application is already %s and cannot be %s", e.From, e.To)
}

// ConstraintError wraps failures coming from the store (constraint
// violations, lost connections) so callers can show a generic retry message.
type ConstraintError struct {
	Op  string
	Err error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}
