package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the oracle provider configuration. It is the `llm` section of
// the application config.
type Config struct {
	// Provider selects which oracle backend to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string `koanf:"provider" validate:"oneof=anthropic openai gemini openrouter mock"`

	Anthropic  AnthropicConfig  `koanf:"anthropic"`
	OpenAI     OpenAIConfig     `koanf:"openai"`
	Gemini     GeminiConfig     `koanf:"gemini"`
	OpenRouter OpenRouterConfig `koanf:"openrouter"`

	// Timeout bounds a single oracle call. Default: 60s.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

type AnthropicConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"` // Default: "claude-haiku"
}

type OpenAIConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `koanf:"base_url"` // Optional, for OpenAI-compatible gateways.
}

type GeminiConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"` // Default: "gemini-flash"
}

type OpenRouterConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`    // Default: "google/gemini-2.0-flash-exp"
	BaseURL string `koanf:"base_url"` // Default: "https://openrouter.ai/api/v1"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "anthropic",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from the flat ESTUDA_* environment
// variables, falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	setFromEnv(&cfg.Provider, "ESTUDA_LLM_PROVIDER")

	setFromEnv(&cfg.Anthropic.APIKey, "ESTUDA_ANTHROPIC_API_KEY")
	setFromEnv(&cfg.Anthropic.Model, "ESTUDA_ANTHROPIC_MODEL")

	setFromEnv(&cfg.OpenAI.APIKey, "ESTUDA_OPENAI_API_KEY")
	setFromEnv(&cfg.OpenAI.Model, "ESTUDA_OPENAI_MODEL")
	setFromEnv(&cfg.OpenAI.BaseURL, "ESTUDA_OPENAI_BASE_URL")

	setFromEnv(&cfg.Gemini.APIKey, "ESTUDA_GEMINI_API_KEY")
	setFromEnv(&cfg.Gemini.Model, "ESTUDA_GEMINI_MODEL")

	setFromEnv(&cfg.OpenRouter.APIKey, "ESTUDA_OPENROUTER_API_KEY")
	setFromEnv(&cfg.OpenRouter.Model, "ESTUDA_OPENROUTER_MODEL")

	return cfg
}

func setFromEnv(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

// DiscoverConfig switches cfg to the first provider whose vendor API key
// variable is set, probing Gemini, OpenAI, Anthropic, then OpenRouter. It
// reports false when none is set.
func DiscoverConfig(cfg Config) (Config, bool) {
	for _, name := range []string{"gemini", "openai", "anthropic", "openrouter"} {
		if k := os.Getenv(strings.ToUpper(name) + "_API_KEY"); k != "" {
			cfg.Provider = name
			*cfg.apiKey(name) = k
			return cfg, true
		}
	}
	return cfg, false
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	key := c.apiKey(c.Provider)
	if key == nil {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if *key == "" {
		return fmt.Errorf("ESTUDA_%s_API_KEY is required for the %s provider", strings.ToUpper(c.Provider), c.Provider)
	}
	return nil
}

func (c *Config) apiKey(provider string) *string {
	switch provider {
	case "anthropic":
		return &c.Anthropic.APIKey
	case "openai":
		return &c.OpenAI.APIKey
	case "gemini":
		return &c.Gemini.APIKey
	case "openrouter":
		return &c.OpenRouter.APIKey
	}
	return nil
}
