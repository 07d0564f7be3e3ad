package llm

import "fmt"

const openRouterURL = "https://openrouter.ai/api/v1"

// NewOpenRouterProvider returns an OpenAI-compatible provider pointed at
// OpenRouter. Models are vendor-qualified IDs such as
// "anthropic/claude-3-haiku" and are never aliased.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = openRouterURL
	}
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: cfg.APIKey, BaseURL: base})
	if err != nil {
		return nil, err
	}
	p.model = cfg.Model
	return p, nil
}
