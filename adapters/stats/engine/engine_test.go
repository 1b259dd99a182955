package engine

import (
	"context"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"ocrstat/adapters/stats/paired"
	"ocrstat/domain/compare"
	"ocrstat/domain/core"
	"ocrstat/domain/measure"
	"ocrstat/internal/testkit"
)

func newTestEngine(t *testing.T, workers int) *Engine {
	t.Helper()
	selector, err := paired.NewSelector(0.05)
	require.NoError(t, err)
	return NewEngine(selector, workers)
}

func TestRunCoversFullCrossProduct(t *testing.T) {
	cfg := testkit.DefaultConfig()
	samples := testkit.GeneratePaired(cfg)

	table, err := newTestEngine(t, 4).Run(context.Background(), samples, []string{"document_type", "sample_size"})
	require.NoError(t, err)
	require.Equal(t, cfg.Groups*len(measure.AllMetrics()), table.Len())

	seen := make(map[measure.SampleKey]bool)
	for _, row := range table.Rows {
		require.False(t, seen[row.Key], "duplicate combination %v", row.Key)
		seen[row.Key] = true
		require.NotEqual(t, compare.TestKind(""), row.Outcome.TestKind)
	}
}

func TestRunOrderingIsDeterministic(t *testing.T) {
	samples := testkit.GeneratePaired(testkit.DefaultConfig())

	table, err := newTestEngine(t, 8).Run(context.Background(), samples, nil)
	require.NoError(t, err)

	sorted := sort.SliceIsSorted(table.Rows, func(i, j int) bool {
		return table.Rows[i].Key.Less(table.Rows[j].Key)
	})
	require.True(t, sorted, "rows ordered by group key then metric")
}

func TestRunParallelismDoesNotChangeResults(t *testing.T) {
	samples := testkit.GeneratePaired(testkit.DefaultConfig())

	serial, err := newTestEngine(t, 1).Run(context.Background(), samples, nil)
	require.NoError(t, err)
	parallel, err := newTestEngine(t, 8).Run(context.Background(), samples, nil)
	require.NoError(t, err)

	require.Equal(t, serial.Rows, parallel.Rows)
}

func TestRunPropagatesPreconditionFailure(t *testing.T) {
	samples := testkit.GeneratePaired(testkit.DefaultConfig())
	key := measure.SampleKey{
		Group:  measure.NewGroupKey("poisoned", "30"),
		Metric: measure.MetricEnergy,
	}
	samples[key] = measure.PairedSample{
		VariantA: []float64{1, math.NaN(), 3},
		VariantB: []float64{1, 2, 3},
	}

	_, err := newTestEngine(t, 4).Run(context.Background(), samples, nil)
	require.Error(t, err)
	require.True(t, core.IsPreconditionError(err))
}

func TestRunRespectsCancellation(t *testing.T) {
	samples := testkit.GeneratePaired(testkit.DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine(t, 2).Run(ctx, samples, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunTwoLevel(t *testing.T) {
	samples := map[measure.SampleKey]measure.TwoLevelSample{
		{Group: measure.NewGroupKey("invoice"), Metric: measure.MetricRuntime}: {
			LevelA: []float64{1, 2, 3, 4, 5},
			LevelB: []float64{10, 11, 12, 13, 14, 15, 16},
		},
		{Group: measure.NewGroupKey("receipt"), Metric: measure.MetricRuntime}: {
			LevelA: []float64{7, 7, 7},
			LevelB: []float64{7, 7},
		},
	}

	table, err := newTestEngine(t, 2).RunTwoLevel(context.Background(), samples, []string{"document_type"})
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	separated := table.Rows[0]
	require.Equal(t, compare.TestTwoLevelRankSum, separated.Outcome.TestKind)
	require.Equal(t, 12, separated.Outcome.SampleSize)
	require.Equal(t, -1.0, *separated.Outcome.EffectSize)

	flat := table.Rows[1]
	require.Equal(t, compare.EffectNoVariation, flat.Outcome.EffectKind)
	require.Nil(t, flat.Outcome.PValue)
}

func TestRunEmptyInput(t *testing.T) {
	table, err := newTestEngine(t, 2).Run(context.Background(), nil, []string{"dataset"})
	require.NoError(t, err)
	require.Equal(t, 0, table.Len())
	require.Equal(t, []string{"dataset"}, table.FactorNames)
}
