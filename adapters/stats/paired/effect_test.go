package paired

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCohenDPaired(t *testing.T) {
	require.Equal(t, 0.0, CohenDPaired(nil))
	require.Equal(t, 0.0, CohenDPaired([]float64{3}))
	require.Equal(t, 0.0, CohenDPaired([]float64{2, 2, 2}), "zero spread")

	// mean 2, sample sd 1.
	d := CohenDPaired([]float64{1, 2, 3})
	require.InDelta(t, 2.0, d, 1e-12)

	// Sign follows the mean.
	require.InDelta(t, -2.0, CohenDPaired([]float64{-1, -2, -3}), 1e-12)
}

func TestCliffsDelta(t *testing.T) {
	require.Equal(t, 0.0, CliffsDelta(nil, []float64{1}))

	// Complete dominance in either direction.
	require.Equal(t, 1.0, CliffsDelta([]float64{5, 6}, []float64{1, 2}))
	require.Equal(t, -1.0, CliffsDelta([]float64{1, 2}, []float64{5, 6}))

	// Identical samples: every cross pair ties.
	require.Equal(t, 0.0, CliffsDelta([]float64{3, 3}, []float64{3, 3}))

	// Partial overlap: 23 wins, 0 losses, 2 ties out of 25 pairs.
	delta := CliffsDelta(
		[]float64{10, 12, 11, 13, 10},
		[]float64{8, 9, 9, 10, 8},
	)
	require.InDelta(t, 0.92, delta, 1e-12)
}
