package problemgen

import "fmt"

// Stage names the step of an attempt that failed.
type Stage string

const (
	StageCall  Stage = "call"  // the oracle call itself
	StageParse Stage = "parse" // no JSON object in the output
	StageShape Stage = "shape" // object lacks the fields its format needs
)

// AttemptError is one failed attempt at a unit.
type AttemptError struct {
	Attempt int
	Stage   Stage
	Err     error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("attempt %d (%s): %v", e.Attempt, e.Stage, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// UnitError reports a unit that exhausted its attempts.
type UnitError struct {
	Attempts []*AttemptError
}

func (e *UnitError) Error() string {
	if len(e.Attempts) == 0 {
		return "no attempts made"
	}
	return fmt.Sprintf("gave up after %d attempts: %v", len(e.Attempts), e.Attempts[len(e.Attempts)-1])
}

func (e *UnitError) Unwrap() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1]
}
