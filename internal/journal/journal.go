// Package journal persists a record of completed morph runs. The journal is
// optional: a nil *Journal is valid and turns every method into a no-op, so
// the pipeline never has to care whether a database is configured.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"morph-server/internal/infra"
	"morph-server/internal/sqlinline"
)

// ErrNotFound is returned when a run id has no journal entry.
var ErrNotFound = errors.New("journal: run not found")

// Run is one journaled pipeline execution together with its stored assets.
type Run struct {
	ID                 string    `json:"id"`
	Instruction        string    `json:"instruction"`
	SubjectType        string    `json:"subject_type"`
	Prompt             string    `json:"prompt"`
	GenModel           string    `json:"gen_model"`
	GenSize            string    `json:"gen_size"`
	CandidatesReceived int       `json:"candidates_received"`
	CandidatesStored   int       `json:"candidates_stored"`
	StartedAt          time.Time `json:"started_at"`
	FinishedAt         time.Time `json:"finished_at"`
	Assets             []Asset   `json:"assets,omitempty"`
}

// Asset is one stored candidate URL, positioned in gallery order.
type Asset struct {
	Position int    `json:"position"`
	URL      string `json:"url"`
}

type Journal struct {
	db infra.SQLExecutor
}

// New builds a journal over the pool, or nil when no pool is configured.
func New(pool *pgxpool.Pool, logger infra.Logger) *Journal {
	if pool == nil {
		return nil
	}
	return &Journal{db: infra.NewSQLRunner(pool, logger)}
}

// Enabled reports whether runs are actually persisted.
func (j *Journal) Enabled() bool {
	return j != nil && j.db != nil
}

// EnsureSchema creates the journal tables when they do not exist yet.
func (j *Journal) EnsureSchema(ctx context.Context) error {
	if !j.Enabled() {
		return nil
	}
	if _, err := j.db.Exec(ctx, sqlinline.QEnsureJournalSchema); err != nil {
		return fmt.Errorf("journal: ensure schema: %w", err)
	}
	return nil
}

// Record persists a finished run and its assets. No-op on a nil journal.
func (j *Journal) Record(ctx context.Context, run Run) error {
	if !j.Enabled() {
		return nil
	}
	_, err := j.db.Exec(ctx, sqlinline.QInsertRun,
		run.ID,
		run.Instruction,
		run.SubjectType,
		run.Prompt,
		run.GenModel,
		run.GenSize,
		run.CandidatesReceived,
		run.CandidatesStored,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("journal: insert run: %w", err)
	}
	for _, asset := range run.Assets {
		if _, err := j.db.Exec(ctx, sqlinline.QInsertRunAsset, run.ID, asset.Position, asset.URL); err != nil {
			return fmt.Errorf("journal: insert run asset: %w", err)
		}
	}
	return nil
}

// List returns the most recent runs without their assets.
func (j *Journal) List(ctx context.Context, limit int) ([]Run, error) {
	if !j.Enabled() {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.Query(ctx, sqlinline.QListRuns, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID,
			&run.Instruction,
			&run.SubjectType,
			&run.Prompt,
			&run.GenModel,
			&run.GenSize,
			&run.CandidatesReceived,
			&run.CandidatesStored,
			&run.StartedAt,
			&run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("journal: scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate runs: %w", err)
	}
	return runs, nil
}

// Get returns one run with its assets, or ErrNotFound.
func (j *Journal) Get(ctx context.Context, id string) (*Run, error) {
	if !j.Enabled() {
		return nil, ErrNotFound
	}
	var run Run
	err := j.db.QueryRow(ctx, sqlinline.QSelectRunByID, id).Scan(
		&run.ID,
		&run.Instruction,
		&run.SubjectType,
		&run.Prompt,
		&run.GenModel,
		&run.GenSize,
		&run.CandidatesReceived,
		&run.CandidatesStored,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if infra.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("journal: select run: %w", err)
	}

	rows, err := j.db.Query(ctx, sqlinline.QListRunAssets, id)
	if err != nil {
		return nil, fmt.Errorf("journal: list run assets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var asset Asset
		if err := rows.Scan(&asset.Position, &asset.URL); err != nil {
			return nil, fmt.Errorf("journal: scan run asset: %w", err)
		}
		run.Assets = append(run.Assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate run assets: %w", err)
	}
	return &run, nil
}
