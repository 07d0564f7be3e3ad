package problemgen

import "github.com/estuda/estuda/internal/llm"

// Config controls how artifacts are generated.
type Config struct {
	// Validators run in order on every parsed artifact; the first failure
	// fails the attempt.
	Validators []Validator

	// MaxTokens is the token budget for one oracle response.
	MaxTokens int

	// Temperature controls oracle output randomness (0.0-1.0).
	Temperature float64

	// Attempts bounds the calls made for one unit.
	Attempts llm.AttemptPolicy

	// MaxInFlight caps the units generated concurrently.
	MaxInFlight int
}

// DefaultConfig returns a Config with the standard validator chain
// and recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&AnswerKeyValidator{},
		},
		MaxTokens:   2048,
		Temperature: 0.7,
		Attempts:    llm.DefaultAttemptPolicy(),
		MaxInFlight: 5,
	}
}
