package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/estuda/estuda/internal/planner"
	"github.com/estuda/estuda/internal/session"
	"github.com/estuda/estuda/internal/spacedrep"
)

const defaultListLimit = 50

// Sessions

func (h *handler) startSession(w http.ResponseWriter, r *http.Request) {
	var in session.StartInput
	if !decode(w, r, &in) {
		return
	}
	s, err := h.Sessions.Start(r.Context(), ownerFrom(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultListLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.Sessions.List(r.Context(), ownerFrom(r), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": list})
}

func (h *handler) getSession(w http.ResponseWriter, r *http.Request) {
	h.sessionOp(w, r, h.Sessions.Get)
}

func (h *handler) pauseSession(w http.ResponseWriter, r *http.Request) {
	h.sessionOp(w, r, h.Sessions.Pause)
}

func (h *handler) resumeSession(w http.ResponseWriter, r *http.Request) {
	h.sessionOp(w, r, h.Sessions.Resume)
}

func (h *handler) cancelSession(w http.ResponseWriter, r *http.Request) {
	h.sessionOp(w, r, h.Sessions.Cancel)
}

func (h *handler) sessionOp(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, owner, id string) (*session.Session, error)) {
	s, err := op(r.Context(), ownerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *handler) finishSession(w http.ResponseWriter, r *http.Request) {
	var in session.FinishInput
	if !decode(w, r, &in) {
		return
	}
	res, err := h.Sessions.Finish(r.Context(), ownerFrom(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Revisions

func (h *handler) createRevision(w http.ResponseWriter, r *http.Request) {
	var in spacedrep.CreateInput
	if !decode(w, r, &in) {
		return
	}
	it, err := h.Revisions.Create(r.Context(), ownerFrom(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *handler) dueRevisions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, defaultListLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items, err := h.Revisions.Due(r.Context(), ownerFrom(r), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revisions": items})
}

func (h *handler) getRevision(w http.ResponseWriter, r *http.Request) {
	h.revisionOp(w, r, h.Revisions.Get)
}

func (h *handler) completeRevision(w http.ResponseWriter, r *http.Request) {
	h.revisionOp(w, r, h.Revisions.Complete)
}

func (h *handler) archiveRevision(w http.ResponseWriter, r *http.Request) {
	h.revisionOp(w, r, h.Revisions.Archive)
}

func (h *handler) revisionOp(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, owner, id string) (*spacedrep.Item, error)) {
	it, err := op(r.Context(), ownerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *handler) reviewRevision(w http.ResponseWriter, r *http.Request) {
	var in spacedrep.ReviewInput
	if !decode(w, r, &in) {
		return
	}
	res, err := h.Revisions.Review(r.Context(), ownerFrom(r), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) revisionHistory(w http.ResponseWriter, r *http.Request) {
	events, err := h.Revisions.History(r.Context(), ownerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// Plans and generations

func (h *handler) previewPlan(w http.ResponseWriter, r *http.Request) {
	var req planner.Request
	if !decode(w, r, &req) {
		return
	}
	units, err := h.Content.Preview(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"units":  units,
		"counts": planner.Counts(units),
	})
}

func (h *handler) generate(w http.ResponseWriter, r *http.Request) {
	var req planner.Request
	if !decode(w, r, &req) {
		return
	}
	res, err := h.Content.Generate(r.Context(), ownerFrom(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) getBatch(w http.ResponseWriter, r *http.Request) {
	arts, err := h.Content.Batch(r.Context(), ownerFrom(r), chi.URLParam(r, "batchID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artifacts": arts})
}

// Usage

func (h *handler) usage(w http.ResponseWriter, r *http.Request) {
	plan, counters, err := h.Limiter.Usage(r.Context(), ownerFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plan": plan, "counters": counters})
}

func (h *handler) setPlan(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Plan string `json:"plan"`
	}
	if !decode(w, r, &body) {
		return
	}
	if err := h.Limiter.SetPlan(r.Context(), ownerFrom(r), body.Plan); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"plan": body.Plan})
}
