// Package content runs a generation request end to end: quota, plan,
// generation, persistence and usage accounting.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/estuda/estuda/internal/apperr"
	"github.com/estuda/estuda/internal/clock"
	"github.com/estuda/estuda/internal/logging"
	"github.com/estuda/estuda/internal/planner"
	"github.com/estuda/estuda/internal/problemgen"
	"github.com/estuda/estuda/internal/store"
	"github.com/estuda/estuda/internal/usage"
)

// Outcome classifies a finished batch.
type Outcome string

const (
	OutcomeComplete Outcome = "complete" // every unit produced an artifact
	OutcomePartial  Outcome = "partial"  // some units failed
	OutcomeEmpty    Outcome = "empty"    // units were planned but none succeeded
)

// Artifact is a persisted generated artifact.
type Artifact struct {
	ID          string              `json:"id"`
	BatchID     string              `json:"batch_id"`
	OwnerID     string              `json:"owner_id"`
	TopicPath   string              `json:"topic_path"`
	TopicIDs    []int64             `json:"topic_ids"`
	Format      string              `json:"format"`
	Difficulty  string              `json:"difficulty"`
	SourceStyle string              `json:"source_style"`
	Content     problemgen.Artifact `json:"content"`
	Request     planner.Request     `json:"request"`
	Attempts    int                 `json:"attempts"`
	Model       string              `json:"model"`
	CreatedAt   time.Time           `json:"created_at"`
}

// UnitFailure summarizes a unit that produced nothing.
type UnitFailure struct {
	Index     int    `json:"index"`
	TopicPath string `json:"topic_path"`
	Format    string `json:"format"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error"`
}

// BatchResult is what a generation request produced. Charged equals the
// number of artifacts, never the number requested.
type BatchResult struct {
	BatchID   string        `json:"batch_id"`
	Outcome   Outcome       `json:"outcome"`
	Requested int           `json:"requested"`
	Planned   int           `json:"planned"`
	Charged   int64         `json:"charged"`
	Artifacts []Artifact    `json:"artifacts"`
	Failures  []UnitFailure `json:"failures,omitempty"`
}

// Service runs generation requests.
type Service struct {
	planner   *planner.Planner
	orch      *problemgen.Orchestrator
	limiter   *usage.Limiter
	artifacts store.ArtifactRepo
	catalog   store.CatalogRepo
	clock     clock.Clock
	log       *zap.Logger
}

// NewService wires a Service.
func NewService(p *planner.Planner, orch *problemgen.Orchestrator, limiter *usage.Limiter,
	artifacts store.ArtifactRepo, catalog store.CatalogRepo, clk clock.Clock, log *zap.Logger) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		planner:   p,
		orch:      orch,
		limiter:   limiter,
		artifacts: artifacts,
		catalog:   catalog,
		clock:     clk,
		log:       logging.OrNop(log),
	}
}

// Preview validates req and returns its work units without generating.
func (s *Service) Preview(req planner.Request) ([]planner.WorkUnit, error) {
	if err := validateFormats(req.Formats); err != nil {
		return nil, err
	}
	return s.planner.Plan(req)
}

// Generate checks owner's quota for the whole request, then plans and
// generates it. A refused quota returns *apperr.QuotaExceededError before
// any unit is dispatched. Only persisted artifacts are charged.
func (s *Service) Generate(ctx context.Context, owner string, req planner.Request) (*BatchResult, error) {
	if err := validateFormats(req.Formats); err != nil {
		return nil, err
	}
	if err := req.Validate(s.planner.MaxTarget); err != nil {
		return nil, err
	}

	decision, err := s.limiter.CheckAndReserve(ctx, owner, usage.KindGeneration, int64(req.TargetCount))
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	units, err := s.planner.Plan(req)
	if err != nil {
		return nil, err
	}

	res := &BatchResult{
		BatchID:   uuid.NewString(),
		Requested: req.TargetCount,
		Planned:   len(units),
	}
	if len(units) == 0 {
		res.Outcome = OutcomeComplete
		return res, nil
	}

	batch := s.orch.Run(ctx, units)

	artifacts, err := s.persist(ctx, owner, res.BatchID, req, batch.Generated)
	if err != nil {
		return nil, err
	}
	res.Artifacts = artifacts
	res.Failures = summarize(batch.Failures)

	if err := s.limiter.Record(ctx, owner, usage.KindGeneration, int64(len(artifacts))); err != nil {
		s.log.Error("failed to record usage",
			zap.String("owner", owner),
			zap.String("batch_id", res.BatchID),
			zap.Int("artifacts", len(artifacts)),
			zap.Error(err),
		)
	} else {
		res.Charged = int64(len(artifacts))
	}

	switch {
	case len(artifacts) == len(units):
		res.Outcome = OutcomeComplete
	case len(artifacts) == 0:
		res.Outcome = OutcomeEmpty
	default:
		res.Outcome = OutcomePartial
	}

	s.log.Info("generation request finished",
		zap.String("owner", owner),
		zap.String("batch_id", res.BatchID),
		zap.String("outcome", string(res.Outcome)),
		zap.Int("planned", len(units)),
		zap.Int("generated", len(artifacts)),
	)
	return res, nil
}

func (s *Service) persist(ctx context.Context, owner, batchID string, req planner.Request, generated []problemgen.Generated) ([]Artifact, error) {
	if len(generated) == 0 {
		return nil, nil
	}

	reqConfig, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request config: %w", err)
	}

	now := s.clock.Now()
	out := make([]Artifact, 0, len(generated))
	rows := make([]store.ArtifactRow, 0, len(generated))
	for _, g := range generated {
		ids, err := s.catalog.ResolvePath(ctx, g.Unit.Path)
		if err != nil {
			return nil, fmt.Errorf("resolve topic %q: %w", g.Unit.TopicPath(), err)
		}
		payload, err := json.Marshal(g.Artifact)
		if err != nil {
			return nil, fmt.Errorf("encode artifact: %w", err)
		}

		a := Artifact{
			ID:          uuid.NewString(),
			BatchID:     batchID,
			OwnerID:     owner,
			TopicPath:   g.Unit.TopicPath(),
			TopicIDs:    ids,
			Format:      g.Unit.Format,
			Difficulty:  g.Unit.Difficulty,
			SourceStyle: g.Unit.SourceStyle,
			Content:     *g.Artifact,
			Request:     req,
			Attempts:    g.Attempts,
			Model:       g.Model,
			CreatedAt:   now,
		}
		out = append(out, a)
		rows = append(rows, store.ArtifactRow{
			ID:            a.ID,
			BatchID:       batchID,
			OwnerID:       owner,
			TopicPath:     a.TopicPath,
			TopicIDs:      joinIDs(ids),
			Format:        a.Format,
			Difficulty:    a.Difficulty,
			SourceStyle:   a.SourceStyle,
			Payload:       string(payload),
			RequestConfig: string(reqConfig),
			Attempts:      a.Attempts,
			Model:         a.Model,
			CreatedAt:     now,
		})
	}

	if err := s.artifacts.SaveBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("save artifacts: %w", err)
	}
	return out, nil
}

// Batch returns the persisted artifacts of one batch.
func (s *Service) Batch(ctx context.Context, owner, batchID string) ([]Artifact, error) {
	rows, err := s.artifacts.ListByBatch(ctx, owner, batchID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("batch %s: %w", batchID, apperr.ErrNotFound)
	}
	return fromRows(rows)
}

// List returns owner's most recent artifacts.
func (s *Service) List(ctx context.Context, owner string, limit int) ([]Artifact, error) {
	rows, err := s.artifacts.List(ctx, owner, limit)
	if err != nil {
		return nil, err
	}
	return fromRows(rows)
}

func fromRows(rows []store.ArtifactRow) ([]Artifact, error) {
	out := make([]Artifact, 0, len(rows))
	for _, r := range rows {
		a := Artifact{
			ID:          r.ID,
			BatchID:     r.BatchID,
			OwnerID:     r.OwnerID,
			TopicPath:   r.TopicPath,
			Format:      r.Format,
			Difficulty:  r.Difficulty,
			SourceStyle: r.SourceStyle,
			Attempts:    r.Attempts,
			Model:       r.Model,
			CreatedAt:   r.CreatedAt,
		}
		ids, err := splitIDs(r.TopicIDs)
		if err != nil {
			return nil, fmt.Errorf("artifact %s: %w", r.ID, err)
		}
		a.TopicIDs = ids
		if err := json.Unmarshal([]byte(r.Payload), &a.Content); err != nil {
			return nil, fmt.Errorf("artifact %s payload: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.RequestConfig), &a.Request); err != nil {
			return nil, fmt.Errorf("artifact %s request config: %w", r.ID, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func summarize(failures []problemgen.Failure) []UnitFailure {
	var out []UnitFailure
	for _, f := range failures {
		uf := UnitFailure{
			Index:     f.Unit.Index,
			TopicPath: f.Unit.TopicPath(),
			Format:    f.Unit.Format,
			Attempts:  len(f.Attempts),
		}
		if n := len(f.Attempts); n > 0 {
			uf.Error = f.Attempts[n-1].Error()
		}
		out = append(out, uf)
	}
	return out
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		if _, err := problemgen.ParseFormat(f); err != nil {
			return apperr.Invalid("formats", "%v", err)
		}
	}
	return nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func splitIDs(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, len(parts))
	for i, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("topic id %q: %w", p, err)
		}
		out[i] = id
	}
	return out, nil
}
