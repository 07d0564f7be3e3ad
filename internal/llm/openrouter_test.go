package llm

import (
	"context"
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	if _, err := NewOpenRouterProvider(OpenRouterConfig{Model: "anthropic/claude-3-haiku"}); err == nil {
		t.Fatal("expected error without an API key")
	}

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "gpt-mini"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-mini" {
		t.Errorf("ModelID = %q, OpenRouter models must not be aliased", p.ModelID())
	}
}

func TestOpenRouterProvider_SendsVendorModel(t *testing.T) {
	var seen chatRequest
	url := chatServer(t, `{"statement":"Qual a conduta?","answer":"B"}`, "stop", &seen)

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "google/gemini-2.5-flash", BaseURL: url})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Complete(context.Background(), Request{Prompt: examPrompt, MaxTokens: 512}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen.Model != "google/gemini-2.5-flash" {
		t.Errorf("sent model %q", seen.Model)
	}
}
