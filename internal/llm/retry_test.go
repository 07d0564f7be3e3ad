package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestAttemptPolicy_LinearBackoff(t *testing.T) {
	p := AttemptPolicy{MaxAttempts: 3, Step: 100 * time.Millisecond}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 300 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := p.Backoff(tt.attempt, errors.New("boom")); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestAttemptPolicy_RateLimitRetryAfterWins(t *testing.T) {
	p := AttemptPolicy{MaxAttempts: 3, Step: 10 * time.Millisecond}

	long := &ErrRateLimit{RetryAfter: time.Second, Err: errors.New("429")}
	if got := p.Backoff(1, long); got != time.Second {
		t.Fatalf("expected RetryAfter to win, got %v", got)
	}

	short := &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}
	if got := p.Backoff(2, short); got != 20*time.Millisecond {
		t.Fatalf("expected linear step to win, got %v", got)
	}
}

func TestDefaultAttemptPolicy(t *testing.T) {
	p := DefaultAttemptPolicy()
	if p.MaxAttempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", p.MaxAttempts)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), false},
		{"unavailable", &ErrProviderUnavailable{Err: errors.New("down")}, true},
		{"rate limit", &ErrRateLimit{Err: errors.New("429")}, true},
		{"invalid response", &ErrInvalidResponse{Err: errors.New("bad")}, true},
		{"max tokens", &ErrMaxTokensExceeded{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Fatalf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSleep_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("Sleep did not return promptly on cancellation")
	}
}

func TestSleep_Elapses(t *testing.T) {
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Sleep(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error for zero wait: %v", err)
	}
}
