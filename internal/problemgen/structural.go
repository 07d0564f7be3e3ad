package problemgen

import (
	"fmt"
	"strings"

	"github.com/estuda/estuda/internal/planner"
)

const (
	maxStatementLen   = 4000
	maxOptionLen      = 600
	maxExplanationLen = 4000
)

// StructuralValidator checks that required fields are present and within
// length limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(a *Artifact, _ planner.WorkUnit) *ValidationError {
	if strings.TrimSpace(a.Statement) == "" {
		return v.fail("statement is empty")
	}
	if len(a.Statement) > maxStatementLen {
		return v.fail("statement exceeds %d characters", maxStatementLen)
	}
	if strings.TrimSpace(a.Answer) == "" {
		return v.fail("answer is empty")
	}
	if strings.TrimSpace(a.Explanation) == "" {
		return v.fail("explanation is empty")
	}
	if len(a.Explanation) > maxExplanationLen {
		return v.fail("explanation exceeds %d characters", maxExplanationLen)
	}
	for i, o := range a.Options {
		if len(o) > maxOptionLen {
			return v.fail("option %d exceeds %d characters", i+1, maxOptionLen)
		}
	}
	return nil
}

func (v *StructuralValidator) fail(format string, args ...any) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...)}
}
