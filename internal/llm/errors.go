package llm

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrRateLimit is a 429 from the oracle. RetryAfter is zero when the
// provider gave no hint.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("oracle rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("oracle rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable is any other failed call: a non-2xx status, a
// transport error or a call that ran out its own deadline. Status is 0 when
// no HTTP response arrived.
type ErrProviderUnavailable struct {
	Status int
	Err    error
}

func (e *ErrProviderUnavailable) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("oracle unavailable (HTTP %d): %v", e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("oracle unavailable: %v", e.Err)
	}
	return "oracle unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrInvalidResponse is output that is empty or does not match the schema it
// was checked against.
type ErrInvalidResponse struct {
	Text string
	Err  error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid oracle output: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded is output cut off at the token limit.
type ErrMaxTokensExceeded struct {
	Limit int
	Text  string
}

func (e *ErrMaxTokensExceeded) Error() string {
	return fmt.Sprintf("oracle output truncated at %d tokens", e.Limit)
}

// statusError classifies a failed call by the HTTP status it came back with.
func statusError(status int, header http.Header, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{RetryAfter: retryAfter(header), Err: err}
	}
	return &ErrProviderUnavailable{Status: status, Err: err}
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
