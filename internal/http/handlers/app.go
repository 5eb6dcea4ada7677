package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"morph-server/internal/infra"
	"morph-server/internal/journal"
	"morph-server/internal/pipeline"
)

// MorphRunner executes a morph run and streams its messages.
type MorphRunner interface {
	Run(ctx context.Context, req pipeline.Request, locale string) <-chan pipeline.Message
}

type App struct {
	Runner  MorphRunner
	Journal *journal.Journal
	Logger  infra.Logger
}

func NewApp(runner MorphRunner, jnl *journal.Journal, logger infra.Logger) *App {
	return &App{Runner: runner, Journal: jnl, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}
