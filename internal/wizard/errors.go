package wizard

import (
	"errors"
	"fmt"
)

// ErrSaveInProgress is returned when a step submission is already running
// for the same wizard session.
var ErrSaveInProgress = errors.New("wizard: save already in progress")

// ValidationError is a user-facing validation failure. It aborts the step
// before any upstream call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// UpstreamError carries the backend's message for a failed create/update
// call so it can be surfaced to the operator verbatim.
type UpstreamError struct {
	Op      string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("wizard: %s failed with status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("wizard: %s failed: %s", e.Op, e.Message)
}
