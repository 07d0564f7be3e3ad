package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func geminiServer(t *testing.T, status int, body any) *GeminiProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			GenerationConfig struct {
				MaxOutputTokens int `json:"maxOutputTokens"`
			} `json:"generationConfig"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != examPrompt {
			t.Errorf("unexpected contents: %+v", req.Contents)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "k", Model: "gemini-flash"}, srv.URL)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return p
}

func geminiReply(text, finish string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
			"finishReason": finish,
		}},
		"modelVersion":  "gemini-2.0-flash-001",
		"usageMetadata": map[string]any{"promptTokenCount": 70, "candidatesTokenCount": 45, "totalTokenCount": 115},
	}
}

func TestGeminiProvider_Complete(t *testing.T) {
	p := geminiServer(t, http.StatusOK, geminiReply(`{"statement":"Qual o agente?","answer":"Discorra."}`, "STOP"))

	resp, err := p.Complete(context.Background(), Request{Prompt: examPrompt, MaxTokens: 1024, Temperature: 0.4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != `{"statement":"Qual o agente?","answer":"Discorra."}` {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.Model != "gemini-2.0-flash-001" || resp.Stop != StopEnd {
		t.Errorf("Model/Stop = %q/%q", resp.Model, resp.Stop)
	}
	if resp.Usage.InputTokens != 70 || resp.Usage.OutputTokens != 45 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestGeminiProvider_MaxTokens(t *testing.T) {
	p := geminiServer(t, http.StatusOK, geminiReply(`{"statement":"Crian`, "MAX_TOKENS"))

	resp, err := p.Complete(context.Background(), Request{Prompt: examPrompt, MaxTokens: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Stop != StopMaxTokens {
		t.Errorf("Stop = %q, want max_tokens", resp.Stop)
	}
}

func TestGeminiProvider_Errors(t *testing.T) {
	errBody := func(code int, status string) map[string]any {
		return map[string]any{"error": map[string]any{"code": code, "message": status, "status": status}}
	}

	p := geminiServer(t, http.StatusTooManyRequests, errBody(429, "RESOURCE_EXHAUSTED"))
	_, err := p.Complete(context.Background(), Request{Prompt: examPrompt, MaxTokens: 100})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %T (%v)", err, err)
	}

	p = geminiServer(t, http.StatusServiceUnavailable, errBody(503, "UNAVAILABLE"))
	_, err = p.Complete(context.Background(), Request{Prompt: examPrompt, MaxTokens: 100})
	var pu *ErrProviderUnavailable
	if !errors.As(err, &pu) {
		t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
	}
	if pu.Status != 503 {
		t.Errorf("Status = %d", pu.Status)
	}
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(context.Background(), GeminiConfig{}, ""); err == nil {
		t.Fatal("expected error without an API key")
	}
}
