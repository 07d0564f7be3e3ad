package problemgen

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/estuda/estuda/internal/logging"
	"github.com/estuda/estuda/internal/planner"
)

// Orchestrator runs work units concurrently, at most MaxInFlight at a time.
// Units never affect one another: a failed unit only drops its artifact.
type Orchestrator struct {
	gen         Generator
	maxInFlight int
	log         *zap.Logger
}

// NewOrchestrator creates an orchestrator. A maxInFlight below 1 means 1.
func NewOrchestrator(gen Generator, maxInFlight int, log *zap.Logger) *Orchestrator {
	return &Orchestrator{gen: gen, maxInFlight: max(1, maxInFlight), log: logging.OrNop(log)}
}

// Run generates every unit and returns the artifacts that succeeded, in
// unit order, with the failures alongside.
func (o *Orchestrator) Run(ctx context.Context, units []planner.WorkUnit) *Batch {
	results := make([]*Generated, len(units))
	failures := make([]error, len(units))

	var g errgroup.Group
	g.SetLimit(o.maxInFlight)
	for i, u := range units {
		g.Go(func() error {
			res, err := o.gen.Generate(ctx, u)
			if err != nil {
				failures[i] = err
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	batch := &Batch{}
	for i, u := range units {
		if results[i] != nil {
			batch.Generated = append(batch.Generated, *results[i])
			continue
		}
		f := Failure{Unit: u}
		var ue *UnitError
		if errors.As(failures[i], &ue) {
			f.Attempts = ue.Attempts
		}
		batch.Failures = append(batch.Failures, f)
	}

	o.log.Info("generation batch finished",
		zap.Int("units", len(units)),
		zap.Int("generated", len(batch.Generated)),
		zap.Int("failed", len(batch.Failures)),
	)
	return batch
}
