// Package apperr defines the error taxonomy surfaced to callers of the
// scheduling and generation services.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a referenced session, revision or artifact
// does not exist (or belongs to another owner).
var ErrNotFound = errors.New("not found")

// ValidationError indicates malformed input. It is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Message
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError indicates an operation that the entity's current state
// does not allow, e.g. finishing a cancelled session.
type InvalidStateError struct {
	Entity string // "session" or "revision"
	ID     string
	State  string
	Op     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s %s %s in state %q", e.Op, e.Entity, e.ID, e.State)
}

// QuotaExceededError is returned by the usage limiter before any work is
// dispatched.
type QuotaExceededError struct {
	Owner     string
	Kind      string
	Period    string // "day" or "month"
	Used      int64
	Limit     int64
	Requested int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s quota exceeded for %s (%s): used %d of %d, requested %d",
		e.Kind, e.Owner, e.Period, e.Used, e.Limit, e.Requested)
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsInvalidState reports whether err wraps an *InvalidStateError.
func IsInvalidState(err error) bool {
	var s *InvalidStateError
	return errors.As(err, &s)
}

// IsQuotaExceeded reports whether err wraps a *QuotaExceededError.
func IsQuotaExceeded(err error) bool {
	var q *QuotaExceededError
	return errors.As(err, &q)
}
