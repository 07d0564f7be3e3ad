package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/estuda/estuda/internal/apperr"
)

type ownerKey struct{}

func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.Header.Get(OwnerHeader))
		if owner == "" {
			writeError(w, r, http.StatusUnauthorized, "MISSING_OWNER", OwnerHeader+" header is required", "")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, owner)))
	})
}

func ownerFrom(r *http.Request) string {
	owner, _ := r.Context().Value(ownerKey{}).(string)
	return owner
}

// APIError is the body of every non-2xx response.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message, field string) {
	writeJSON(w, status, errorResponse{Error: APIError{
		Code:      code,
		Message:   message,
		Field:     field,
		RequestID: chimiddleware.GetReqID(r.Context()),
	}})
}

// fail maps service errors onto status codes.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *apperr.ValidationError
		serr *apperr.InvalidStateError
		qerr *apperr.QuotaExceededError
	)
	switch {
	case errors.As(err, &verr):
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", verr.Message, verr.Field)
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", err.Error(), "")
	case errors.As(err, &serr):
		writeError(w, r, http.StatusConflict, "INVALID_STATE", serr.Error(), "")
	case errors.As(err, &qerr):
		writeError(w, r, http.StatusTooManyRequests, "QUOTA_EXCEEDED", qerr.Error(), "")
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the body.
		w.WriteHeader(499)
	default:
		h.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error", "")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body: "+err.Error(), "")
		return false
	}
	return true
}

// queryLimit reads ?limit=, falling back to def.
func queryLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Invalid("limit", "must be a non-negative integer")
	}
	return n, nil
}
