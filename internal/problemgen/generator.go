// Package problemgen turns planned work units into validated artifacts by
// prompting a text-completion oracle.
package problemgen

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/estuda/estuda/internal/llm"
	"github.com/estuda/estuda/internal/logging"
	"github.com/estuda/estuda/internal/planner"
)

// Generator produces the artifact of a single work unit.
type Generator interface {
	// Generate returns the artifact of unit, or a *UnitError once every
	// attempt failed.
	Generate(ctx context.Context, unit planner.WorkUnit) (*Generated, error)
}

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	log      *zap.Logger
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config, log *zap.Logger) *LLMGenerator {
	if cfg.Attempts.MaxAttempts < 1 {
		cfg.Attempts.MaxAttempts = 1
	}
	return &LLMGenerator{provider: provider, config: cfg, log: logging.OrNop(log)}
}

// Generate runs at most Attempts.MaxAttempts attempts, sleeping
// attempt*Step between them. Every kind of failure is retried the same way.
func (g *LLMGenerator) Generate(ctx context.Context, unit planner.WorkUnit) (*Generated, error) {
	ctx = llm.WithPurpose(ctx, "artifact-gen")
	policy := g.config.Attempts

	var failed []*AttemptError
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		a, model, err := g.attempt(ctx, unit, attempt)
		if err == nil {
			return &Generated{Unit: unit, Artifact: a, Attempts: attempt, Model: model}, nil
		}
		failed = append(failed, err)

		g.log.Debug("generation attempt failed",
			zap.Int("unit", unit.Index),
			zap.Int("attempt", attempt),
			zap.String("stage", string(err.Stage)),
			zap.Error(err.Err),
		)

		if attempt == policy.MaxAttempts || !llm.Retryable(err.Err) {
			break
		}
		if llm.Sleep(ctx, policy.Backoff(attempt, err.Err)) != nil {
			break
		}
	}
	return nil, &UnitError{Attempts: failed}
}

func (g *LLMGenerator) attempt(ctx context.Context, unit planner.WorkUnit, n int) (*Artifact, string, *AttemptError) {
	fail := func(stage Stage, err error) (*Artifact, string, *AttemptError) {
		return nil, "", &AttemptError{Attempt: n, Stage: stage, Err: err}
	}

	out, err := llm.Ask(ctx, g.provider, BuildPrompt(unit), g.config.MaxTokens, g.config.Temperature)
	if err != nil {
		return fail(StageCall, err)
	}

	parsed := Parse(out.Text)
	if !parsed.OK() {
		return fail(StageParse, fmt.Errorf("no JSON object in %d bytes of output", len(parsed.Raw)))
	}

	a, err := decode(parsed.Object, unit, g.config.Validators)
	if err != nil {
		return fail(StageShape, err)
	}
	return a, out.Model, nil
}

// decode checks obj against the schema of the unit's format, then runs the
// validator chain.
func decode(obj json.RawMessage, unit planner.WorkUnit, validators []Validator) (*Artifact, error) {
	schema := SchemaFor(Format(unit.Format))
	if schema == nil {
		return nil, fmt.Errorf("unknown format %q", unit.Format)
	}
	if err := llm.ValidateJSON(schema, obj); err != nil {
		return nil, err
	}

	var a Artifact
	if err := json.Unmarshal(obj, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	for _, v := range validators {
		if verr := v.Validate(&a, unit); verr != nil {
			return nil, verr
		}
	}
	return &a, nil
}
