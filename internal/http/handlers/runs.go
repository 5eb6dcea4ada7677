package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"morph-server/internal/journal"
)

const defaultRunListLimit = 50

func (a *App) ListRuns(w http.ResponseWriter, r *http.Request) {
	if !a.Journal.Enabled() {
		a.error(w, http.StatusNotFound, "not_found", "run journal is not enabled")
		return
	}
	limit := defaultRunListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	runs, err := a.Journal.List(r.Context(), limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: listing runs failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to list runs")
		return
	}
	if runs == nil {
		runs = []journal.Run{}
	}
	a.json(w, http.StatusOK, map[string]any{"runs": runs})
}

func (a *App) GetRun(w http.ResponseWriter, r *http.Request) {
	if !a.Journal.Enabled() {
		a.error(w, http.StatusNotFound, "not_found", "run journal is not enabled")
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid run id")
		return
	}
	run, err := a.Journal.Get(r.Context(), id)
	if errors.Is(err, journal.ErrNotFound) {
		a.error(w, http.StatusNotFound, "not_found", "run not found")
		return
	}
	if err != nil {
		a.Logger.Error().Err(err).Str("run_id", id).Msg("handlers: loading run failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load run")
		return
	}
	a.json(w, http.StatusOK, run)
}
