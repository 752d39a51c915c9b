package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/drover-dev/drover/pkg/domain/interfaces"
	"github.com/drover-dev/drover/pkg/domain/model"
)

const defaultRunListLimit = 20

// RunHandler serves read-only access to recorded release runs.
type RunHandler struct {
	runs interfaces.RunRepository
}

// NewRunHandler creates a new RunHandler
func NewRunHandler(runs interfaces.RunRepository) *RunHandler {
	return &RunHandler{
		runs: runs,
	}
}

// List returns recent runs, newest first. The limit query parameter caps the
// result count.
func (h *RunHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultRunListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, goerr.New("invalid limit parameter"), http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	runs, err := h.runs.List(ctx, limit)
	if err != nil {
		ctxlog.From(ctx).Error("Failed to list runs", "error", err)
		writeError(w, goerr.Wrap(err, "failed to list runs"), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []*model.ReleaseRun{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"runs": runs,
	}); err != nil {
		ctxlog.From(ctx).Error("Failed to encode run list", "error", err)
	}
}

// Get returns a single run by ID.
func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "runID")

	run, err := h.runs.Get(ctx, id)
	if err != nil {
		ctxlog.From(ctx).Error("Failed to get run", "error", err, "id", id)
		writeError(w, goerr.Wrap(err, "failed to get run"), http.StatusInternalServerError)
		return
	}
	if run == nil {
		writeError(w, goerr.New("run not found"), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(run); err != nil {
		ctxlog.From(ctx).Error("Failed to encode run", "error", err, "id", id)
	}
}
