// Package app wires configuration, storage and services into one graph
// shared by the CLI commands and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/estuda/estuda/internal/api"
	"github.com/estuda/estuda/internal/clock"
	"github.com/estuda/estuda/internal/config"
	"github.com/estuda/estuda/internal/content"
	"github.com/estuda/estuda/internal/llm"
	"github.com/estuda/estuda/internal/planner"
	"github.com/estuda/estuda/internal/problemgen"
	"github.com/estuda/estuda/internal/session"
	"github.com/estuda/estuda/internal/spacedrep"
	"github.com/estuda/estuda/internal/store"
	"github.com/estuda/estuda/internal/usage"
)

// App holds the opened store and the services built on it.
type App struct {
	Config *config.Config
	Log    *zap.Logger
	Clock  clock.Clock
	Store  *store.Store

	Sessions  *session.Tracker
	Revisions *spacedrep.Scheduler
	Planner   *planner.Planner
	Limiter   *usage.Limiter

	content *content.Service
	closers []func() error
}

// New opens the database and builds every service that needs no LLM
// provider. Generation is wired lazily by Content.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if err := store.EnsureDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("prepare database dir: %w", err)
	}
	st, err := store.Open(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{
		Config:  cfg,
		Log:     log,
		Clock:   clock.System{},
		Store:   st,
		Planner: planner.New(cfg.Generation.MaxTargetCount),
		closers: []func() error{st.Close},
	}

	var counters usage.Counters = usage.NewSQLCounters(st.UsageRepo(), a.Clock)
	if cfg.Redis.URL != "" {
		rc, err := usage.NewRedisCounters(ctx, cfg.Redis.URL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		counters = rc
		a.closers = append(a.closers, rc.Close)
		log.Info("usage counters in redis")
	}

	a.Sessions = session.NewTracker(st.SessionRepo(), st.CatalogRepo(), a.Clock, log.Named("session"))
	a.Revisions = spacedrep.NewScheduler(st.RevisionRepo(), st.CatalogRepo(), a.Clock, log.Named("revision"))
	a.Limiter = usage.NewLimiter(counters, st.SubscriptionRepo(), cfg.Usage.Plans, a.Clock, log.Named("usage"))
	return a, nil
}

// Content returns the generation service, creating the LLM provider on first
// use.
func (a *App) Content(ctx context.Context) (*content.Service, error) {
	if a.content != nil {
		return a.content, nil
	}
	if err := a.Config.LLM.Validate(); err != nil {
		return nil, err
	}
	provider, err := llm.NewProvider(ctx, a.Config.LLM, a.Store.EventRepo(), a.Log.Named("llm"))
	if err != nil {
		return nil, err
	}

	gcfg := a.Config.Generation.Problemgen()
	gen := problemgen.New(provider, gcfg, a.Log.Named("problemgen"))
	orch := problemgen.NewOrchestrator(gen, gcfg.MaxInFlight, a.Log.Named("orchestrator"))
	a.content = content.NewService(a.Planner, orch, a.Limiter, a.Store.ArtifactRepo(), a.Store.CatalogRepo(), a.Clock, a.Log.Named("content"))
	return a.content, nil
}

// Handler builds the HTTP handler over every service.
func (a *App) Handler(ctx context.Context) (http.Handler, error) {
	svc, err := a.Content(ctx)
	if err != nil {
		return nil, fmt.Errorf("generation unavailable: %w", err)
	}
	return api.NewRouter(api.Deps{
		Sessions:  a.Sessions,
		Revisions: a.Revisions,
		Content:   svc,
		Limiter:   a.Limiter,
		Log:       a.Log.Named("http"),
	}), nil
}

// Close releases everything New opened, last opened first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
