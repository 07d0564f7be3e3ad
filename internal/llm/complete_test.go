package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAsk(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "Segue a questão: {\"statement\":\"Qual?\"}"})

	resp, err := Ask(context.Background(), mock, examPrompt, 512, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "Segue a questão: {\"statement\":\"Qual?\"}" {
		t.Errorf("Text = %q", resp.Text)
	}
	if call := mock.Calls[0]; call.Prompt != examPrompt || call.MaxTokens != 512 || call.Temperature != 0.7 {
		t.Errorf("request = %+v", call)
	}
}

func TestAsk_Failures(t *testing.T) {
	tests := []struct {
		name  string
		reply MockResponse
		check func(error) bool
	}{
		{"truncated", MockResponse{Text: `{"statement":`, Stop: StopMaxTokens}, func(err error) bool {
			var e *ErrMaxTokensExceeded
			return errors.As(err, &e)
		}},
		{"blank", MockResponse{Text: " \n "}, func(err error) bool {
			var e *ErrInvalidResponse
			return errors.As(err, &e)
		}},
		{"rate limited", MockResponse{Err: &ErrRateLimit{RetryAfter: time.Second}}, func(err error) bool {
			var e *ErrRateLimit
			return errors.As(err, &e)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Ask(context.Background(), NewMockProvider(tt.reply), examPrompt, 100, 0)
			if !tt.check(err) {
				t.Errorf("unexpected error %T (%v)", err, err)
			}
			if !Retryable(err) {
				t.Errorf("%v should be retryable", err)
			}
		})
	}
}

type blockingProvider struct{}

func (blockingProvider) Complete(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) ModelID() string { return "blocking" }

func TestWithTimeout_ReportsUnavailable(t *testing.T) {
	p := WithTimeout(blockingProvider{}, 10*time.Millisecond)

	_, err := p.Complete(context.Background(), Request{})
	var pu *ErrProviderUnavailable
	if !errors.As(err, &pu) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if !Retryable(err) {
		t.Error("a per-call timeout should be retryable")
	}
}

func TestWithTimeout_CallerCancellation(t *testing.T) {
	p := WithTimeout(blockingProvider{}, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Complete(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if Retryable(err) {
		t.Error("caller cancellation must not be retryable")
	}
}
