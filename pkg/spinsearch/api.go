// Package spinsearch is the public facade of the moment-configuration
// search engine. A Client owns a persistence store and drives controller
// runs against a caller-supplied structure and evaluator.
package spinsearch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"spinsearch/internal/search"
	"spinsearch/internal/storage"
	"spinsearch/internal/structure"
)

type Options struct {
	StoreKind string // "memory" or "sqlite"
	DBPath    string
	Logger    *slog.Logger
}

type Client struct {
	store  storage.Store
	logger *slog.Logger
}

// RunRequest describes one search run. Structure, Magnitudes and Evaluator
// are required; Config carries the engine tunables.
type RunRequest struct {
	RunID       string // generated when empty
	ResumeRunID string // reuse a prior run's evaluated configurations
	Structure   structure.Provider
	Magnitudes  map[string][]float64
	Evaluator   search.Evaluator
	Config      search.Config
}

type RunSummary struct {
	RunID  string
	Result search.Result
}

func New(opts Options) (*Client, error) {
	store, err := storage.NewStore(opts.StoreKind, opts.DBPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(context.Background()); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{store: store, logger: logger}, nil
}

// NewWithStore wraps an initialized store; used by drivers that manage the
// store lifecycle themselves.
func NewWithStore(store storage.Store, logger *slog.Logger) (*Client, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{store: store, logger: logger}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Run executes a search to a terminal state, persisting every evaluation
// outcome and the run record.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Structure == nil {
		return RunSummary{}, fmt.Errorf("structure is required")
	}
	if req.Evaluator == nil {
		return RunSummary{}, fmt.Errorf("evaluator is required")
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	cfg := req.Config
	cfg.Sink = &storeSink{store: c.store, runID: runID}
	if cfg.Logger == nil {
		cfg.Logger = c.logger.With("run_id", runID)
	}

	controller, err := search.NewController(cfg, req.Structure, req.Magnitudes, req.Evaluator)
	if err != nil {
		return RunSummary{}, err
	}

	if req.ResumeRunID != "" {
		records, err := c.store.ListConfigurations(ctx, req.ResumeRunID)
		if err != nil {
			return RunSummary{}, fmt.Errorf("load run %s: %w", req.ResumeRunID, err)
		}
		if len(records) == 0 {
			return RunSummary{}, fmt.Errorf("run %s has no stored configurations", req.ResumeRunID)
		}
		if err := controller.Restore(records); err != nil {
			return RunSummary{}, fmt.Errorf("restore run %s: %w", req.ResumeRunID, err)
		}
	}

	result, err := controller.Run(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	record := storage.RunRecord{
		ID:           runID,
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Seed:         cfg.Seed,
		State:        string(result.State),
		BestEnergy:   result.BestEnergy,
		Generations:  result.Generations,
		Succeeded:    result.Evaluations.Succeeded,
		Failed:       result.Evaluations.Failed,
	}
	if result.Best != nil {
		record.BestID = result.Best.ID
	}
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, err
	}
	if len(result.BestHistory) > 0 {
		if err := c.store.SaveBestHistory(ctx, runID, result.BestHistory); err != nil {
			return RunSummary{}, err
		}
	}

	return RunSummary{RunID: runID, Result: result}, nil
}

// Runs lists stored run records, oldest first.
func (c *Client) Runs(ctx context.Context) ([]storage.RunRecord, error) {
	return c.store.ListRuns(ctx)
}

// BestOf returns the lowest-energy evaluated configuration of a stored run.
func (c *Client) BestOf(ctx context.Context, runID string) (search.Configuration, error) {
	records, err := c.store.ListConfigurations(ctx, runID)
	if err != nil {
		return search.Configuration{}, err
	}
	var best *search.Configuration
	for i := range records {
		if records[i].Status != search.StatusEvaluated {
			continue
		}
		if best == nil || records[i].Energy < best.Energy {
			best = &records[i]
		}
	}
	if best == nil {
		return search.Configuration{}, search.ErrEmptyPopulation
	}
	return *best, nil
}

// History returns the best-energy-by-generation trace of a stored run.
func (c *Client) History(ctx context.Context, runID string) ([]float64, error) {
	history, ok, err := c.store.GetBestHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run %s has no stored history", runID)
	}
	return history, nil
}

// storeSink adapts the store to the controller's record sink.
type storeSink struct {
	store storage.Store
	runID string
}

func (s *storeSink) RecordConfiguration(ctx context.Context, c search.Configuration) error {
	return s.store.SaveConfiguration(ctx, s.runID, c)
}
