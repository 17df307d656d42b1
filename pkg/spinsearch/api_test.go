package spinsearch

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spinsearch/internal/moment"
	"spinsearch/internal/search"
	"spinsearch/internal/structure"
)

type deviationEvaluator struct {
	target moment.Vector
}

func (e deviationEvaluator) Evaluate(_ context.Context, c search.Configuration) (float64, error) {
	sum := 0.0
	for _, v := range c.Moments {
		d := moment.Vector{X: v.X - e.target.X, Y: v.Y - e.target.Y, Z: v.Z - e.target.Z}
		sum += d.Dot(d)
	}
	return sum, nil
}

func testClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{
		StoreKind: "memory",
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func testRequest(t *testing.T, seed int64) RunRequest {
	t.Helper()
	target, err := structure.NewSimple([]structure.Site{
		{Species: "Fe"}, {Species: "Fe"}, {Species: "Fe"},
	}, nil)
	require.NoError(t, err)

	return RunRequest{
		Structure:  target,
		Magnitudes: map[string][]float64{"Fe": {1.0}},
		Evaluator:  deviationEvaluator{target: moment.Vector{Z: 1}},
		Config: search.Config{
			InitialPopulation: 8,
			MaxPopulation:     8,
			MaxGenerations:    4,
			MaxConcurrent:     2,
			MutationRate:      0.5,
			AngleSpread:       0.5,
			Magnitude:         moment.Range{Min: 0, Max: 2},
			Seed:              seed,
		},
	}
}

func TestClientRunPersistsRunAndConfigurations(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	summary, err := client.Run(ctx, testRequest(t, 1))
	require.NoError(t, err)
	require.NotEmpty(t, summary.RunID)
	require.NotNil(t, summary.Result.Best)
	assert.True(t, summary.Result.State.Terminal())

	runs, err := client.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, summary.RunID, runs[0].ID)
	assert.Equal(t, string(summary.Result.State), runs[0].State)
	assert.Equal(t, summary.Result.Best.ID, runs[0].BestID)

	best, err := client.BestOf(ctx, summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, summary.Result.Best.ID, best.ID)
	assert.Equal(t, summary.Result.BestEnergy, best.Energy)

	history, err := client.History(ctx, summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, summary.Result.BestHistory, history)
}

func TestClientResumeBuildsOnPriorRun(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	first, err := client.Run(ctx, testRequest(t, 1))
	require.NoError(t, err)
	require.NotNil(t, first.Result.Best)

	// Same seed: without the restored history the seeding phase would
	// regenerate and re-evaluate the exact same initial candidates.
	resumed := testRequest(t, 1)
	resumed.ResumeRunID = first.RunID
	second, err := client.Run(ctx, resumed)
	require.NoError(t, err)
	require.NotNil(t, second.Result.Best)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.LessOrEqual(t, second.Result.BestEnergy, first.Result.BestEnergy)

	runs, err := client.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestClientResumeRequiresStoredRun(t *testing.T) {
	client := testClient(t)

	req := testRequest(t, 1)
	req.ResumeRunID = "missing"
	_, err := client.Run(context.Background(), req)
	require.Error(t, err)
}

func TestClientValidatesRequest(t *testing.T) {
	client := testClient(t)

	req := testRequest(t, 1)
	req.Structure = nil
	_, err := client.Run(context.Background(), req)
	require.Error(t, err)

	req = testRequest(t, 1)
	req.Evaluator = nil
	_, err = client.Run(context.Background(), req)
	require.Error(t, err)
}

func TestBestOfWithoutEvaluationsFails(t *testing.T) {
	client := testClient(t)
	_, err := client.BestOf(context.Background(), "missing")
	require.ErrorIs(t, err, search.ErrEmptyPopulation)
}
