package loader

import (
	"fmt"

	"ocrstat/domain/core"
	"ocrstat/domain/measure"
)

// PartitionPaired groups rows by the chosen factor columns and builds one
// PairedSample per (group, metric): the two named variants' values within the
// group, in run-table order. Pairing is by position within the group; the
// selector truncates to the shorter side (documented policy). The variant
// labels must both occur somewhere in the data.
func PartitionPaired(rows []Row, factors []string, variantA, variantB measure.Variant) (map[measure.SampleKey]measure.PairedSample, error) {
	if err := validateFactors(factors); err != nil {
		return nil, err
	}

	seenA, seenB := false, false
	byGroup := make(map[measure.GroupKey]map[measure.Metric]*measure.PairedSample)
	for _, row := range rows {
		key, err := groupKeyFor(row, factors)
		if err != nil {
			return nil, err
		}
		switch row.Variant {
		case variantA:
			seenA = true
		case variantB:
			seenB = true
		default:
			continue
		}

		metrics, ok := byGroup[key]
		if !ok {
			metrics = make(map[measure.Metric]*measure.PairedSample, len(row.Values))
			byGroup[key] = metrics
		}
		for metric, value := range row.Values {
			sample, ok := metrics[metric]
			if !ok {
				sample = &measure.PairedSample{}
				metrics[metric] = sample
			}
			if row.Variant == variantA {
				sample.VariantA = append(sample.VariantA, value)
			} else {
				sample.VariantB = append(sample.VariantB, value)
			}
		}
	}

	if !seenA {
		return nil, fmt.Errorf("%w: %q", core.ErrVariantMismatch, variantA)
	}
	if !seenB {
		return nil, fmt.Errorf("%w: %q", core.ErrVariantMismatch, variantB)
	}

	samples := make(map[measure.SampleKey]measure.PairedSample)
	for key, metrics := range byGroup {
		for metric, sample := range metrics {
			samples[measure.SampleKey{Group: key, Metric: metric}] = *sample
		}
	}
	return samples, nil
}

// PartitionTwoLevel groups rows by the chosen factor columns and splits each
// group's observations by the two levels of levelFactor. The levels are
// independent samples; no positional alignment is applied or implied.
func PartitionTwoLevel(rows []Row, factors []string, levelFactor, levelA, levelB string) (map[measure.SampleKey]measure.TwoLevelSample, error) {
	if err := validateFactors(append(append([]string{}, factors...), levelFactor)); err != nil {
		return nil, err
	}

	byGroup := make(map[measure.GroupKey]map[measure.Metric]*measure.TwoLevelSample)
	for _, row := range rows {
		level, ok := row.Factors[levelFactor]
		if !ok {
			return nil, fmt.Errorf("unknown factor column %q", levelFactor)
		}
		if level != levelA && level != levelB {
			continue
		}
		key, err := groupKeyFor(row, factors)
		if err != nil {
			return nil, err
		}

		metrics, ok := byGroup[key]
		if !ok {
			metrics = make(map[measure.Metric]*measure.TwoLevelSample, len(row.Values))
			byGroup[key] = metrics
		}
		for metric, value := range row.Values {
			sample, ok := metrics[metric]
			if !ok {
				sample = &measure.TwoLevelSample{}
				metrics[metric] = sample
			}
			if level == levelA {
				sample.LevelA = append(sample.LevelA, value)
			} else {
				sample.LevelB = append(sample.LevelB, value)
			}
		}
	}

	samples := make(map[measure.SampleKey]measure.TwoLevelSample)
	for key, metrics := range byGroup {
		for metric, sample := range metrics {
			samples[measure.SampleKey{Group: key, Metric: metric}] = *sample
		}
	}
	return samples, nil
}

func groupKeyFor(row Row, factors []string) (measure.GroupKey, error) {
	parts := make([]string, len(factors))
	for i, f := range factors {
		v, ok := row.Factors[f]
		if !ok {
			return "", fmt.Errorf("unknown factor column %q", f)
		}
		parts[i] = v
	}
	return measure.NewGroupKey(parts...), nil
}

func validateFactors(factors []string) error {
	if len(factors) == 0 {
		return fmt.Errorf("at least one grouping factor is required")
	}
	seen := make(map[string]bool, len(factors))
	for _, f := range factors {
		if seen[f] {
			return fmt.Errorf("duplicate grouping factor %q", f)
		}
		seen[f] = true
	}
	return nil
}
