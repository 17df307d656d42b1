package storage

import (
	"context"
	"sort"
	"sync"

	"spinsearch/internal/search"
)

type MemoryStore struct {
	mu             sync.RWMutex
	runs           map[string]RunRecord
	configurations map[string][]search.Configuration
	history        map[string][]float64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]RunRecord)
	s.configurations = make(map[string][]search.Configuration)
	s.history = make(map[string][]float64)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAtUTC < runs[j].CreatedAtUTC })
	return runs, nil
}

func (s *MemoryStore) SaveConfiguration(_ context.Context, runID string, c search.Configuration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.configurations[runID] = append(s.configurations[runID], c)
	return nil
}

func (s *MemoryStore) ListConfigurations(_ context.Context, runID string) ([]search.Configuration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]search.Configuration(nil), s.configurations[runID]...), nil
}

func (s *MemoryStore) SaveBestHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[runID] = append([]float64(nil), history...)
	return nil
}

func (s *MemoryStore) GetBestHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]float64(nil), history...), true, nil
}
