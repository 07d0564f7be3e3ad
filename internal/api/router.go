// Package api exposes the study services over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/estuda/estuda/internal/content"
	"github.com/estuda/estuda/internal/logging"
	"github.com/estuda/estuda/internal/session"
	"github.com/estuda/estuda/internal/spacedrep"
	"github.com/estuda/estuda/internal/usage"
)

// OwnerHeader carries the caller's owner id. Every /api/v1 route requires it.
const OwnerHeader = "X-Owner-ID"

// Deps are the services behind the routes.
type Deps struct {
	Sessions  *session.Tracker
	Revisions *spacedrep.Scheduler
	Content   *content.Service
	Limiter   *usage.Limiter
	Log       *zap.Logger
}

type handler struct {
	Deps
	log *zap.Logger
}

// NewRouter builds the HTTP handler.
func NewRouter(d Deps) http.Handler {
	h := &handler{Deps: d, log: logging.OrNop(d.Log)}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(requireOwner)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.listSessions)
			r.Post("/", h.startSession)
			r.Get("/{id}", h.getSession)
			r.Post("/{id}/pause", h.pauseSession)
			r.Post("/{id}/resume", h.resumeSession)
			r.Post("/{id}/finish", h.finishSession)
			r.Post("/{id}/cancel", h.cancelSession)
		})

		r.Route("/revisions", func(r chi.Router) {
			r.Post("/", h.createRevision)
			r.Get("/due", h.dueRevisions)
			r.Get("/{id}", h.getRevision)
			r.Get("/{id}/history", h.revisionHistory)
			r.Post("/{id}/review", h.reviewRevision)
			r.Post("/{id}/complete", h.completeRevision)
			r.Post("/{id}/archive", h.archiveRevision)
		})

		r.Post("/plans", h.previewPlan)

		r.Route("/generations", func(r chi.Router) {
			r.Post("/", h.generate)
			r.Get("/{batchID}", h.getBatch)
		})

		r.Route("/usage", func(r chi.Router) {
			r.Get("/", h.usage)
			r.Put("/plan", h.setPlan)
		})
	})

	return r
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
