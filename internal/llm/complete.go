package llm

import (
	"context"
	"errors"
	"strings"
)

// Ask sends prompt to p and returns the response. Output that stopped at
// maxTokens or came back blank is an error: neither can hold a usable
// artifact.
func Ask(ctx context.Context, p Provider, prompt string, maxTokens int, temperature float64) (*Response, error) {
	resp, err := p.Complete(ctx, Request{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, err
	}
	if resp.Stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Limit: maxTokens, Text: resp.Text}
	}
	if strings.TrimSpace(resp.Text) == "" {
		return nil, &ErrInvalidResponse{Err: errors.New("empty output")}
	}
	return resp, nil
}
