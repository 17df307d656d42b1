package storage

import (
	"context"
	"testing"

	"spinsearch/internal/moment"
	"spinsearch/internal/search"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	run := RunRecord{ID: "run-1", CreatedAtUTC: "2026-08-30T10:00:00Z", Seed: 7, State: "exhausted"}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("save run: %v", err)
	}
	got, ok, err := store.GetRun(ctx, "run-1")
	if err != nil || !ok {
		t.Fatalf("get run: ok=%v err=%v", ok, err)
	}
	if got.Seed != 7 || got.State != "exhausted" {
		t.Fatalf("run record corrupted: %+v", got)
	}

	if _, ok, _ := store.GetRun(ctx, "missing"); ok {
		t.Fatal("found a run that was never saved")
	}

	first := search.Configuration{ID: "a", Moments: []moment.Vector{{Z: 1}}, Status: search.StatusEvaluated, Energy: 2}
	second := search.Configuration{ID: "b", Moments: []moment.Vector{{X: 1}}, Status: search.StatusFailed, Failure: search.FailureTimeout}
	if err := store.SaveConfiguration(ctx, "run-1", first); err != nil {
		t.Fatalf("save configuration: %v", err)
	}
	if err := store.SaveConfiguration(ctx, "run-1", second); err != nil {
		t.Fatalf("save configuration: %v", err)
	}

	configurations, err := store.ListConfigurations(ctx, "run-1")
	if err != nil {
		t.Fatalf("list configurations: %v", err)
	}
	if len(configurations) != 2 || configurations[0].ID != "a" || configurations[1].ID != "b" {
		t.Fatalf("configurations out of order: %+v", configurations)
	}

	if err := store.SaveBestHistory(ctx, "run-1", []float64{3, 1}); err != nil {
		t.Fatalf("save history: %v", err)
	}
	history, ok, err := store.GetBestHistory(ctx, "run-1")
	if err != nil || !ok || len(history) != 2 {
		t.Fatalf("get history: %v ok=%v len=%d", err, ok, len(history))
	}
}

func TestMemoryStoreListRunsSortedByCreation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	_ = store.SaveRun(ctx, RunRecord{ID: "later", CreatedAtUTC: "2026-08-31T00:00:00Z"})
	_ = store.SaveRun(ctx, RunRecord{ID: "earlier", CreatedAtUTC: "2026-08-30T00:00:00Z"})

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "earlier" || runs[1].ID != "later" {
		t.Fatalf("runs out of order: %+v", runs)
	}
}

func TestNewStoreFactory(t *testing.T) {
	if _, err := NewStore("memory", ""); err != nil {
		t.Fatalf("memory store: %v", err)
	}
	if _, err := NewStore("bogus", ""); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
