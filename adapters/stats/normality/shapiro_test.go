package normality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"ocrstat/domain/core"
	"ocrstat/internal/testkit"
)

func TestShapiroWilkUntestableInputs(t *testing.T) {
	for name, data := range map[string][]float64{
		"empty":     {},
		"single":    {1.0},
		"pair":      {1.0, 2.0},
		"constant":  {3.0, 3.0, 3.0, 3.0},
		"two_const": {7.5, 7.5, 7.5},
	} {
		t.Run(name, func(t *testing.T) {
			_, _, ok := ShapiroWilk(data)
			require.False(t, ok)
		})
	}
}

func TestShapiroWilkAcceptsIdealNormalSample(t *testing.T) {
	// Expected normal order statistics are as normal-shaped as a sample can
	// be; W should sit near its maximum.
	for _, n := range []int{10, 20, 50} {
		w, p, ok := ShapiroWilk(testkit.NormalScores(n))
		require.True(t, ok)
		require.Greater(t, w, 0.98, "n=%d", n)
		require.Greater(t, p, 0.5, "n=%d", n)
	}
}

func TestShapiroWilkRejectsLognormalSample(t *testing.T) {
	scores := testkit.NormalScores(50)
	data := make([]float64, len(scores))
	for i, z := range scores {
		data[i] = math.Exp(z)
	}

	_, p, ok := ShapiroWilk(data)
	require.True(t, ok)
	require.Less(t, p, 0.01)
}

func TestShapiroWilkRejectsExtremeOutlier(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}
	_, p, ok := ShapiroWilk(data)
	require.True(t, ok)
	require.Less(t, p, 0.01)
}

func TestShapiroWilkExactSmallestSample(t *testing.T) {
	// A perfectly linear n=3 sample sits near the W ceiling and the test has
	// nothing to object to.
	w, p, ok := ShapiroWilk([]float64{1, 2, 3})
	require.True(t, ok)
	require.Greater(t, w, 0.98)
	require.LessOrEqual(t, w, 1.0)
	require.Greater(t, p, 0.5)
}

func TestClassifierAlphaValidation(t *testing.T) {
	for _, alpha := range []float64{0, 1, -0.1, 1.5, math.NaN()} {
		_, err := NewClassifier(alpha)
		require.Error(t, err)
		require.True(t, core.IsConfigError(err))
	}

	c, err := NewClassifier(0.05)
	require.NoError(t, err)
	require.Equal(t, 0.05, c.Alpha())
}

func TestClassifierDecisionRule(t *testing.T) {
	c, err := NewClassifier(DefaultAlpha)
	require.NoError(t, err)

	// Too short: untestable, never plausibly normal.
	require.Nil(t, c.Classify([]float64{1, 2}))
	require.False(t, c.PlausiblyNormal(nil))

	p := c.Classify(testkit.NormalScores(30))
	require.NotNil(t, p)
	require.True(t, c.PlausiblyNormal(p))

	low := 0.01
	require.False(t, c.PlausiblyNormal(&low))
	boundary := DefaultAlpha
	require.True(t, c.PlausiblyNormal(&boundary))
}

func TestClassifierIsPure(t *testing.T) {
	c, err := NewClassifier(DefaultAlpha)
	require.NoError(t, err)

	data := []float64{3.1, 2.7, 5.5, 4.2, 3.9, 4.8, 2.2, 5.0}
	p1 := c.Classify(data)
	p2 := c.Classify(data)
	require.NotNil(t, p1)
	require.Equal(t, *p1, *p2)

	// The input sequence is left untouched.
	require.Equal(t, []float64{3.1, 2.7, 5.5, 4.2, 3.9, 4.8, 2.2, 5.0}, data)
}
