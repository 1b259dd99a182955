package measure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMetric(t *testing.T) {
	for _, s := range []string{"energy", "Energy", " RUNTIME ", "memory"} {
		m, err := ParseMetric(s)
		require.NoError(t, err)
		require.Contains(t, AllMetrics(), m)
	}

	_, err := ParseMetric("latency")
	require.Error(t, err)
}

func TestGroupKeyRoundTrip(t *testing.T) {
	key := NewGroupKey("invoice", "set1", "30")
	require.Equal(t, "invoice|set1|30", key.String())
	require.Equal(t, []string{"invoice", "set1", "30"}, key.Parts())

	require.Nil(t, GroupKey("").Parts())
	require.Equal(t, []string{"solo"}, NewGroupKey("solo").Parts())
}

func TestSampleKeyOrdering(t *testing.T) {
	a := SampleKey{Group: NewGroupKey("invoice"), Metric: MetricEnergy}
	b := SampleKey{Group: NewGroupKey("invoice"), Metric: MetricRuntime}
	c := SampleKey{Group: NewGroupKey("receipt"), Metric: MetricEnergy}

	require.True(t, a.Less(b), "metric breaks ties within a group")
	require.True(t, b.Less(c), "group key dominates")
	require.False(t, a.Less(a))
}

func TestPairedSampleLen(t *testing.T) {
	s := PairedSample{
		VariantA: []float64{1, 2, 3, 4},
		VariantB: []float64{1, 2},
	}
	require.Equal(t, 2, s.Len())
	require.Equal(t, 0, PairedSample{}.Len())
}

func TestMeasurementRecordFinite(t *testing.T) {
	rec := MeasurementRecord{Values: map[Metric]float64{
		MetricEnergy:  1.5,
		MetricRuntime: 0,
	}}
	require.True(t, rec.Finite())

	rec.Values[MetricMemory] = math.Inf(-1)
	require.False(t, rec.Finite())

	rec.Values[MetricMemory] = math.NaN()
	require.False(t, rec.Finite())
}
