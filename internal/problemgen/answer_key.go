package problemgen

import (
	"fmt"
	"strings"

	"github.com/estuda/estuda/internal/planner"
)

const (
	minOptions = 4
	maxOptions = 5
)

// AnswerKeyValidator checks that the answer key fits the unit's format:
// a letter naming one of 4-5 distinct options for multiple choice, "true"
// or "false" without options for true/false, and no options for
// discursive questions.
type AnswerKeyValidator struct{}

func (v *AnswerKeyValidator) Name() string { return "answer-key" }

func (v *AnswerKeyValidator) Validate(a *Artifact, unit planner.WorkUnit) *ValidationError {
	switch Format(unit.Format) {
	case FormatMultipleChoice:
		return v.multipleChoice(a)
	case FormatTrueFalse:
		if len(a.Options) > 0 {
			return v.fail("true_false must have no options")
		}
		if a.Answer != "true" && a.Answer != "false" {
			return v.fail("true_false answer must be \"true\" or \"false\", got %q", a.Answer)
		}
	case FormatDiscursive:
		if len(a.Options) > 0 {
			return v.fail("discursive must have no options")
		}
	default:
		return v.fail("unknown format %q", unit.Format)
	}
	return nil
}

func (v *AnswerKeyValidator) multipleChoice(a *Artifact) *ValidationError {
	if len(a.Options) < minOptions || len(a.Options) > maxOptions {
		return v.fail("multiple choice must have %d to %d options, got %d", minOptions, maxOptions, len(a.Options))
	}

	// All options must be non-empty and distinct.
	seen := make(map[string]bool, len(a.Options))
	for i, o := range a.Options {
		o = strings.TrimSpace(o)
		if o == "" {
			return v.fail("option %s is empty", OptionLetter(i))
		}
		key := strings.ToLower(o)
		if seen[key] {
			return v.fail("duplicate option %q", o)
		}
		seen[key] = true
	}

	idx := OptionIndex(a.Answer)
	if idx < 0 || idx >= len(a.Options) {
		return v.fail("answer %q does not name one of the %d options", a.Answer, len(a.Options))
	}
	return nil
}

func (v *AnswerKeyValidator) fail(format string, args ...any) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...)}
}

// OptionLetter returns the letter of the i-th option (0 → "A").
func OptionLetter(i int) string {
	return string(rune('A' + i))
}

// OptionIndex returns the 0-based index named by a single letter, or -1.
func OptionIndex(letter string) int {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return -1
	}
	return int(letter[0] - 'A')
}
