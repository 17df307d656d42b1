// Package storage persists search runs: every evaluated or failed
// configuration plus per-run metadata, enough to resume a search without
// re-evaluating known configurations.
package storage

import (
	"context"

	"spinsearch/internal/search"
)

// RunRecord is the per-run metadata row.
type RunRecord struct {
	VersionedRecord
	ID           string  `json:"id"`
	CreatedAtUTC string  `json:"created_at_utc"`
	Seed         int64   `json:"seed"`
	State        string  `json:"state"`
	BestID       string  `json:"best_id,omitempty"`
	BestEnergy   float64 `json:"best_energy"`
	Generations  int     `json:"generations"`
	Succeeded    int     `json:"succeeded"`
	Failed       int     `json:"failed"`
}

// Store defines the persistence operations of a search run.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id string) (RunRecord, bool, error)
	ListRuns(ctx context.Context) ([]RunRecord, error)
	SaveConfiguration(ctx context.Context, runID string, c search.Configuration) error
	ListConfigurations(ctx context.Context, runID string) ([]search.Configuration, error)
	SaveBestHistory(ctx context.Context, runID string, history []float64) error
	GetBestHistory(ctx context.Context, runID string) ([]float64, bool, error)
}
