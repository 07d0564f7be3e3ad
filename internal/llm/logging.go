package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/estuda/estuda/internal/logging"
	"github.com/estuda/estuda/internal/store"
)

type loggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	log      *zap.Logger
}

// WithLogging records every call through p as an llm request event and a zap
// debug line. name is the provider label stored with each event. A nil repo
// only logs.
func WithLogging(p Provider, name string, events store.EventRepo, log *zap.Logger) Provider {
	return &loggingProvider{inner: p, provider: name, events: events, log: logging.OrNop(log)}
}

func (l *loggingProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Complete(ctx, req)
	latency := time.Since(start).Milliseconds()

	ev := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   latency,
		Success:     err == nil,
		RequestBody: req.Prompt,
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = resp.Text
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	l.log.Debug("oracle call",
		zap.String("provider", l.provider),
		zap.String("model", ev.Model),
		zap.String("purpose", ev.Purpose),
		zap.Int64("latency_ms", latency),
		zap.Int("input_tokens", ev.InputTokens),
		zap.Int("output_tokens", ev.OutputTokens),
		zap.Error(err),
	)

	if l.events != nil {
		if werr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); werr != nil {
			l.log.Warn("record llm request event", zap.Error(werr))
		}
	}
	return resp, err
}

func (l *loggingProvider) ModelID() string { return l.inner.ModelID() }
