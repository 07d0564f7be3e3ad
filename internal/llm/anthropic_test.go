package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
)

const examPrompt = "Gere uma questão de múltipla escolha estilo ENARE sobre Cardiologia > Arritmias."

func anthropicServer(t *testing.T, calls *atomic.Int32, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test-key", Model: "claude-haiku"}, option.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func writeAnthropicError(w http.ResponseWriter, status int, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"type":  "error",
		"error": map[string]any{"type": kind, "message": kind},
	})
}

func TestAnthropicProvider_Complete(t *testing.T) {
	var calls atomic.Int32
	var got struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}
	p := anthropicServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "msg_1",
			"type": "message",
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": `{"statement":"Qual o ritmo?",`},
				{"type": "text", "text": `"answer":"A"}`},
			},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 120, "output_tokens": 80},
		})
	})

	resp, err := p.Complete(context.Background(), Request{Prompt: examPrompt, MaxTokens: 2048, Temperature: 0.7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Model != "claude-haiku-4-5-20251001" || got.MaxTokens != 2048 || got.Temperature != 0.7 {
		t.Errorf("request model/max_tokens/temperature = %q/%d/%v", got.Model, got.MaxTokens, got.Temperature)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content[0].Text != examPrompt {
		t.Errorf("unexpected messages: %+v", got.Messages)
	}

	if resp.Text != `{"statement":"Qual o ritmo?","answer":"A"}` {
		t.Errorf("Text = %q, want both text blocks joined", resp.Text)
	}
	if resp.Stop != StopEnd || resp.Usage.Total() != 200 {
		t.Errorf("Stop = %q, total tokens = %d", resp.Stop, resp.Usage.Total())
	}
}

func TestAnthropicProvider_MaxTokens(t *testing.T) {
	var calls atomic.Int32
	p := anthropicServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": "msg_2", "type": "message", "role": "assistant",
			"content":     []map[string]any{{"type": "text", "text": `{"statement":"Paciente de 70 a`}},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "max_tokens",
			"usage":       map[string]any{"input_tokens": 120, "output_tokens": 16},
		})
	})

	_, err := Ask(context.Background(), p, examPrompt, 16, 0)
	var mt *ErrMaxTokensExceeded
	if !errors.As(err, &mt) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %v", err)
	}
	if mt.Limit != 16 {
		t.Errorf("Limit = %d", mt.Limit)
	}
}

func TestAnthropicProvider_Errors(t *testing.T) {
	t.Run("rate limit carries retry-after", func(t *testing.T) {
		var calls atomic.Int32
		p := anthropicServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "7")
			writeAnthropicError(w, http.StatusTooManyRequests, "rate_limit_error")
		})

		_, err := p.Complete(context.Background(), Request{Prompt: examPrompt, MaxTokens: 100})
		var rl *ErrRateLimit
		if !errors.As(err, &rl) {
			t.Fatalf("expected ErrRateLimit, got %T (%v)", err, err)
		}
		if rl.RetryAfter != 7*time.Second {
			t.Errorf("RetryAfter = %v, want 7s", rl.RetryAfter)
		}
		if calls.Load() != 1 {
			t.Errorf("SDK made %d calls, want 1", calls.Load())
		}
	})

	t.Run("server error is unavailable and not retried", func(t *testing.T) {
		var calls atomic.Int32
		p := anthropicServer(t, &calls, func(w http.ResponseWriter, r *http.Request) {
			writeAnthropicError(w, http.StatusServiceUnavailable, "overloaded_error")
		})

		_, err := p.Complete(context.Background(), Request{Prompt: examPrompt, MaxTokens: 100})
		var pu *ErrProviderUnavailable
		if !errors.As(err, &pu) {
			t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
		}
		if pu.Status != http.StatusServiceUnavailable {
			t.Errorf("Status = %d", pu.Status)
		}
		if calls.Load() != 1 {
			t.Errorf("SDK made %d calls, want 1", calls.Load())
		}
	})
}

func TestNewAnthropicProvider(t *testing.T) {
	if _, err := NewAnthropicProvider(AnthropicConfig{}); err == nil {
		t.Error("expected error without an API key")
	}

	for alias, want := range map[string]string{
		"claude-sonnet":            "claude-sonnet-4-20250514",
		"claude-haiku":             "claude-haiku-4-5-20251001",
		"claude-opus-4-5-20251101": "claude-opus-4-5-20251101",
	} {
		p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "k", Model: alias})
		if err != nil {
			t.Fatalf("%s: %v", alias, err)
		}
		if p.ModelID() != want {
			t.Errorf("ModelID(%q) = %q, want %q", alias, p.ModelID(), want)
		}
	}
}
