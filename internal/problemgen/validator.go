package problemgen

import (
	"fmt"

	"github.com/estuda/estuda/internal/planner"
)

// Validator checks a parsed artifact against the unit it was generated for.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for error messages and logging,
	// e.g. "structural", "answer-key".
	Name() string

	// Validate returns nil if the artifact passes.
	Validate(a *Artifact, unit planner.WorkUnit) *ValidationError
}

// ValidationError describes why an artifact failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}
