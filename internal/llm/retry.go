package llm

import (
	"context"
	"errors"
	"time"
)

// AttemptPolicy bounds how many times a caller asks the oracle for the same
// unit of work and how long it waits between asks. The wait grows linearly:
// after attempt n (1-based) the caller sleeps n*Step.
type AttemptPolicy struct {
	MaxAttempts int           `koanf:"max_attempts" validate:"min=1,max=10"`
	Step        time.Duration `koanf:"backoff_step" validate:"gte=0"`
}

// DefaultAttemptPolicy is three attempts, half a second apart and growing.
func DefaultAttemptPolicy() AttemptPolicy {
	return AttemptPolicy{MaxAttempts: 3, Step: 500 * time.Millisecond}
}

// Backoff returns the wait after the given 1-based attempt failed with err.
// A rate-limit RetryAfter hint wins when it is longer than the linear step.
func (p AttemptPolicy) Backoff(attempt int, err error) time.Duration {
	wait := time.Duration(attempt) * p.Step

	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > wait {
		return rl.RetryAfter
	}
	return wait
}

// Retryable reports whether another attempt could succeed after err.
// Cancellation and deadline errors end the loop; everything else
// (transport, rate limit, malformed output) is worth another try.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
