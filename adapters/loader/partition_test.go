package loader

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ocrstat/domain/core"
	"ocrstat/domain/measure"
)

func testRow(variant, docType, dataset, sampleSize string, energy float64) Row {
	return Row{
		Variant: measure.Variant(variant),
		Factors: map[string]string{
			FactorDocumentType: docType,
			FactorDataset:      dataset,
			FactorSampleSize:   sampleSize,
			FactorLanguage:     "eng",
		},
		Values: map[measure.Metric]float64{
			measure.MetricEnergy:  energy,
			measure.MetricRuntime: energy / 10,
			measure.MetricMemory:  energy * 10,
		},
	}
}

func TestPartitionPaired(t *testing.T) {
	rows := []Row{
		testRow("paddle", "invoice", "set1", "30", 10),
		testRow("tesseract", "invoice", "set1", "30", 8),
		testRow("paddle", "invoice", "set1", "30", 12),
		testRow("tesseract", "invoice", "set1", "30", 9),
		testRow("paddle", "receipt", "set1", "30", 20),
		testRow("tesseract", "receipt", "set1", "30", 18),
	}

	samples, err := PartitionPaired(rows, []string{FactorDocumentType, FactorDataset}, "paddle", "tesseract")
	require.NoError(t, err)
	// 2 groups x 3 metrics.
	require.Len(t, samples, 6)

	key := measure.SampleKey{
		Group:  measure.NewGroupKey("invoice", "set1"),
		Metric: measure.MetricEnergy,
	}
	sample, ok := samples[key]
	require.True(t, ok)
	require.Equal(t, []float64{10, 12}, sample.VariantA, "run-table order preserved")
	require.Equal(t, []float64{8, 9}, sample.VariantB)
}

func TestPartitionPairedIgnoresOtherVariants(t *testing.T) {
	rows := []Row{
		testRow("paddle", "invoice", "set1", "30", 10),
		testRow("tesseract", "invoice", "set1", "30", 8),
		testRow("easyocr", "invoice", "set1", "30", 99),
	}

	samples, err := PartitionPaired(rows, []string{FactorDocumentType}, "paddle", "tesseract")
	require.NoError(t, err)

	key := measure.SampleKey{Group: measure.NewGroupKey("invoice"), Metric: measure.MetricEnergy}
	require.Equal(t, []float64{10}, samples[key].VariantA)
	require.Equal(t, []float64{8}, samples[key].VariantB)
}

func TestPartitionPairedUnseenVariant(t *testing.T) {
	rows := []Row{
		testRow("paddle", "invoice", "set1", "30", 10),
	}

	_, err := PartitionPaired(rows, []string{FactorDocumentType}, "paddle", "tesseract")
	require.Error(t, err)
	require.ErrorIs(t, err, core.ErrVariantMismatch)
}

func TestPartitionPairedFactorValidation(t *testing.T) {
	rows := []Row{testRow("paddle", "invoice", "set1", "30", 10)}

	_, err := PartitionPaired(rows, nil, "paddle", "tesseract")
	require.Error(t, err)

	_, err = PartitionPaired(rows, []string{FactorDataset, FactorDataset}, "paddle", "tesseract")
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate")

	_, err = PartitionPaired(rows, []string{"nonexistent"}, "paddle", "tesseract")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown factor")
}

func TestPartitionTwoLevel(t *testing.T) {
	rows := []Row{
		testRow("paddle", "invoice", "set1", "1", 10),
		testRow("paddle", "invoice", "set1", "20", 30),
		testRow("paddle", "invoice", "set1", "20", 32),
		testRow("paddle", "invoice", "set1", "5", 99), // neither level
		testRow("tesseract", "invoice", "set1", "1", 11),
	}

	samples, err := PartitionTwoLevel(rows, []string{FactorDocumentType}, FactorSampleSize, "1", "20")
	require.NoError(t, err)

	key := measure.SampleKey{Group: measure.NewGroupKey("invoice"), Metric: measure.MetricEnergy}
	sample, ok := samples[key]
	require.True(t, ok)
	// Levels pool across variants; sizes may differ.
	require.Equal(t, []float64{10, 11}, sample.LevelA)
	require.Equal(t, []float64{30, 32}, sample.LevelB)
}

func TestPartitionTwoLevelUnknownLevelFactor(t *testing.T) {
	rows := []Row{testRow("paddle", "invoice", "set1", "1", 10)}

	_, err := PartitionTwoLevel(rows, []string{FactorDocumentType}, "nonexistent", "1", "20")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown factor")
}
