// Package config loads layered application configuration: built-in defaults,
// an optional YAML file, ESTUDA_* environment variables and command-line
// flags, later layers winning.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/estuda/estuda/internal/apperr"
	"github.com/estuda/estuda/internal/llm"
	"github.com/estuda/estuda/internal/planner"
	"github.com/estuda/estuda/internal/problemgen"
	"github.com/estuda/estuda/internal/store"
	"github.com/estuda/estuda/internal/usage"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ESTUDA_"

// Config is the full application configuration.
type Config struct {
	Env        string           `koanf:"env" validate:"oneof=development production"`
	Debug      bool             `koanf:"debug"`
	DB         DBConfig         `koanf:"db"`
	HTTP       HTTPConfig       `koanf:"http"`
	LLM        llm.Config       `koanf:"llm"`
	Generation GenerationConfig `koanf:"generation"`
	Usage      UsageConfig      `koanf:"usage"`
	Redis      RedisConfig      `koanf:"redis"`
}

type DBConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type HTTPConfig struct {
	Addr string `koanf:"addr" validate:"required"`
}

// GenerationConfig tunes the generation pipeline.
type GenerationConfig struct {
	Retry          llm.AttemptPolicy `koanf:"retry"`
	MaxInFlight    int               `koanf:"max_in_flight" validate:"min=1,max=50"`
	MaxTargetCount int               `koanf:"max_target_count" validate:"min=1,max=100"`
	MaxTokens      int               `koanf:"max_tokens" validate:"min=1"`
	Temperature    float64           `koanf:"temperature" validate:"gte=0,lte=1"`
}

// Problemgen returns the generator configuration with the standard
// validator chain.
func (g GenerationConfig) Problemgen() problemgen.Config {
	cfg := problemgen.DefaultConfig()
	cfg.Attempts = g.Retry
	cfg.MaxInFlight = g.MaxInFlight
	cfg.MaxTokens = g.MaxTokens
	cfg.Temperature = g.Temperature
	return cfg
}

// UsageConfig holds the plan table. A negative limit means unlimited.
type UsageConfig struct {
	Plans usage.Plans `koanf:"plans"`
}

// RedisConfig selects Redis for usage counters when URL is set.
type RedisConfig struct {
	URL string `koanf:"url"`
}

// Load builds the configuration. path may be empty; flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	// A missing .env is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")

	if err := k.Load(defaultsProvider{}, nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the struct tags and the plan table.
func (c *Config) Validate() error {
	if err := apperr.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, ok := c.Usage.Plans[usage.DefaultPlan]; !ok {
		return fmt.Errorf("invalid config: %w", apperr.Invalid("usage.plans", "plan %q must be defined", usage.DefaultPlan))
	}
	return nil
}

// envKey maps ESTUDA_GENERATION__MAX_IN_FLIGHT to generation.max_in_flight.
// Only nested names (with "__") and the top-level env and debug switches are
// taken; the flat ESTUDA_* provider variables feed the llm defaults instead.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if key == "env" || key == "debug" {
		return key
	}
	if !strings.Contains(key, "__") {
		return ""
	}
	return strings.ReplaceAll(key, "__", ".")
}

var flagKeys = map[string]string{
	"db":           "db.path",
	"addr":         "http.addr",
	"env":          "env",
	"debug":        "debug",
	"llm-provider": "llm.provider",
}

func flagKey(f *pflag.Flag) (string, any) {
	key, ok := flagKeys[f.Name]
	if !ok {
		return "", nil
	}
	if f.Value.Type() == "bool" {
		return key, f.Value.String() == "true"
	}
	return key, f.Value.String()
}

// defaultsProvider is the bottom configuration layer.
type defaultsProvider struct{}

func (defaultsProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("defaults provider does not support this method")
}

func (defaultsProvider) Read() (map[string]any, error) {
	lc := llm.ConfigFromEnv()
	if os.Getenv("ESTUDA_LLM_PROVIDER") == "" {
		lc, _ = llm.DiscoverConfig(lc)
	}
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	gen := problemgen.DefaultConfig()

	plans := map[string]any{}
	for name, kinds := range usage.DefaultPlans() {
		m := map[string]any{}
		for kind, l := range kinds {
			m[string(kind)] = map[string]any{"daily": int64(l.Daily), "monthly": int64(l.Monthly)}
		}
		plans[name] = m
	}

	return map[string]any{
		"env":   "development",
		"debug": false,
		"db":    map[string]any{"path": dbPath},
		"http":  map[string]any{"addr": ":8080"},
		"llm": map[string]any{
			"provider":   lc.Provider,
			"anthropic":  map[string]any{"api_key": lc.Anthropic.APIKey, "model": lc.Anthropic.Model},
			"openai":     map[string]any{"api_key": lc.OpenAI.APIKey, "model": lc.OpenAI.Model, "base_url": lc.OpenAI.BaseURL},
			"gemini":     map[string]any{"api_key": lc.Gemini.APIKey, "model": lc.Gemini.Model},
			"openrouter": map[string]any{"api_key": lc.OpenRouter.APIKey, "model": lc.OpenRouter.Model, "base_url": lc.OpenRouter.BaseURL},
			"timeout":    lc.Timeout,
		},
		"generation": map[string]any{
			"retry": map[string]any{
				"max_attempts": gen.Attempts.MaxAttempts,
				"backoff_step": gen.Attempts.Step,
			},
			"max_in_flight":    gen.MaxInFlight,
			"max_target_count": planner.DefaultMaxTarget,
			"max_tokens":       gen.MaxTokens,
			"temperature":      gen.Temperature,
		},
		"usage": map[string]any{"plans": plans},
		"redis": map[string]any{"url": ""},
	}, nil
}
