package problemgen

import (
	"fmt"

	"github.com/estuda/estuda/internal/planner"
)

// Format is the output shape of a generated artifact.
type Format string

const (
	// FormatMultipleChoice is a statement with lettered options and one correct letter.
	FormatMultipleChoice Format = "multiple_choice"

	// FormatTrueFalse is a single assertion judged true or false.
	FormatTrueFalse Format = "true_false"

	// FormatDiscursive is an open question with an expected answer.
	FormatDiscursive Format = "discursive"
)

// Formats lists every supported format.
var Formats = []Format{FormatMultipleChoice, FormatTrueFalse, FormatDiscursive}

// ParseFormat returns the Format named s.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Artifact is a validated generated question with its answer key.
type Artifact struct {
	// Statement is the question text, or the assertion for true/false.
	Statement string `json:"statement"`

	// Options holds the alternatives in letter order (A, B, ...). Only
	// multiple choice artifacts carry options.
	Options []string `json:"options,omitempty"`

	// Answer is the key: a letter for multiple choice, "true" or "false"
	// for true/false, the expected answer for discursive questions.
	Answer string `json:"answer"`

	// Explanation justifies the key.
	Explanation string `json:"explanation"`
}

// Generated is a work unit together with the artifact it produced.
type Generated struct {
	Unit     planner.WorkUnit
	Artifact *Artifact
	Attempts int
	Model    string
}

// Failure is a work unit that produced nothing, with the error of every attempt.
type Failure struct {
	Unit     planner.WorkUnit
	Attempts []*AttemptError
}

// Batch is the outcome of running a set of work units. Generated may be
// shorter than the number of units.
type Batch struct {
	Generated []Generated
	Failures  []Failure
}
