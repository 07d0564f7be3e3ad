package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estuda/estuda/internal/store"
)

func TestWithLogging_RecordsEvents(t *testing.T) {
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	reply := `{"statement":"Qual a principal causa de FA?","answer":"A"}`
	mock := NewMockProvider(
		MockResponse{Text: reply, Usage: Usage{InputTokens: 12, OutputTokens: 5}},
		MockResponse{Err: errors.New("boom")},
	)
	p := WithLogging(mock, "anthropic", st.EventRepo(), zap.NewNop())
	ctx := WithPurpose(context.Background(), "artifact-gen")

	if _, err := p.Complete(ctx, Request{Prompt: examPrompt}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := p.Complete(ctx, Request{Prompt: examPrompt}); err == nil {
		t.Fatal("second call should fail")
	}

	events, err := st.EventRepo().QueryLLMRequests(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	var ok, failed int
	for _, ev := range events {
		if ev.Purpose != "artifact-gen" || ev.Provider != "anthropic" {
			t.Errorf("purpose/provider = %q/%q", ev.Purpose, ev.Provider)
		}
		if ev.RequestBody != examPrompt {
			t.Errorf("request body = %q", ev.RequestBody)
		}
		if ev.Success {
			ok++
			if ev.InputTokens != 12 || ev.OutputTokens != 5 || ev.ResponseBody != reply || ev.Model != "mock" {
				t.Errorf("success event = %+v", ev.LLMRequestEventData)
			}
		} else {
			failed++
			if ev.ErrorMessage != "boom" {
				t.Errorf("error message = %q", ev.ErrorMessage)
			}
		}
	}
	if ok != 1 || failed != 1 {
		t.Errorf("ok/failed = %d/%d", ok, failed)
	}
}

func TestWithLogging_NilRepo(t *testing.T) {
	p := WithLogging(NewMockProvider(MockResponse{Text: "ok"}), "mock", nil, nil)
	if _, err := p.Complete(context.Background(), Request{Prompt: examPrompt}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID = %q", p.ModelID())
	}
}
