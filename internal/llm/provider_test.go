package llm

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestMockProvider_ScriptedReplies(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: `{"statement":"Q1","answer":"A"}`, Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockResponse{Err: &ErrRateLimit{}},
		MockResponse{Text: `{"statement":"Q2"`, Stop: StopMaxTokens},
	)
	ctx := context.Background()

	first, err := mock.Complete(ctx, Request{Prompt: "Tema: Pediatria"})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first.Text != `{"statement":"Q1","answer":"A"}` || first.Stop != StopEnd || first.Usage.Total() != 15 {
		t.Errorf("first = %+v", first)
	}

	var rl *ErrRateLimit
	if _, err := mock.Complete(ctx, Request{Prompt: "Tema: Pediatria"}); !errors.As(err, &rl) {
		t.Errorf("second: expected ErrRateLimit, got %v", err)
	}

	third, err := mock.Complete(ctx, Request{Prompt: "Tema: Pediatria"})
	if err != nil || third.Stop != StopMaxTokens {
		t.Errorf("third = %+v, %v", third, err)
	}

	var pu *ErrProviderUnavailable
	if _, err := mock.Complete(ctx, Request{}); !errors.As(err, &pu) {
		t.Errorf("exhausted mock: expected ErrProviderUnavailable, got %v", err)
	}
	if mock.CallCount() != 4 || mock.Pending() != 0 {
		t.Errorf("calls=%d pending=%d", mock.CallCount(), mock.Pending())
	}
	if mock.Calls[0].Prompt != "Tema: Pediatria" {
		t.Errorf("recorded prompt %q", mock.Calls[0].Prompt)
	}
}

func TestMockProvider_AddResponse(t *testing.T) {
	mock := NewMockProvider()
	mock.AddResponse(MockResponse{Text: "ok"})
	if mock.Pending() != 1 {
		t.Fatalf("Pending = %d", mock.Pending())
	}
	resp, err := mock.Complete(context.Background(), Request{})
	if err != nil || resp.Text != "ok" || resp.Model != "mock" {
		t.Errorf("resp = %+v, err = %v", resp, err)
	}
}

func TestPurpose(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "untagged" {
		t.Errorf("PurposeFrom(empty) = %q", p)
	}
	if p := PurposeFrom(WithPurpose(ctx, "artifact-gen")); p != "artifact-gen" {
		t.Errorf("PurposeFrom = %q", p)
	}
}

func TestPriceOf(t *testing.T) {
	tests := []struct {
		model string
		want  Price
		ok    bool
	}{
		{"gpt-4o", Price{2.5, 10}, true},
		{"gpt-4o-mini-2024-07-18", Price{0.15, 0.6}, true},
		{"claude-sonnet-4-20250514", Price{3, 15}, true},
		{"claude-sonnet-4-5-20250929", Price{3, 15}, true},
		{"claude-haiku-4-5-20251001", Price{1, 5}, true},
		{"openai/gpt-4.1-mini", Price{0.4, 1.6}, true},
		{"gemini-2.0-flash-001", Price{0.1, 0.4}, true},
		{"mock", Price{}, false},
		{"gpt-4omni", Price{}, false},
	}
	for _, tt := range tests {
		got, ok := PriceOf(tt.model)
		if ok != tt.ok || got != tt.want {
			t.Errorf("PriceOf(%q) = %+v, %v; want %+v, %v", tt.model, got, ok, tt.want, tt.ok)
		}
	}

	if c := (Price{Input: 1, Output: 5}).Cost(2_000_000, 1_000_000); math.Abs(c-7) > 1e-9 {
		t.Errorf("Cost = %v, want 7", c)
	}
}
