package compare

import (
	"ocrstat/domain/measure"
)

// TestKind identifies the hypothesis test the selector settled on.
type TestKind string

const (
	// TestParametricPaired is the paired two-sample t-test, chosen when the
	// paired differences look plausibly normal.
	TestParametricPaired TestKind = "parametric_paired"
	// TestNonParametricPaired is the Wilcoxon signed-rank test.
	TestNonParametricPaired TestKind = "non_parametric_paired"
	// TestTwoLevelRankSum is the Wilcoxon rank-sum (Mann-Whitney) test used by
	// the unpaired two-level grouping mode.
	TestTwoLevelRankSum TestKind = "two_level_rank_sum"
	// TestUndefined marks combinations where no test could run.
	TestUndefined TestKind = "undefined"
)

// EffectKind identifies the effect-size measure paired with the test.
type EffectKind string

const (
	// EffectStandardizedMeanDiff is paired Cohen's d, mean(d)/sd(d).
	EffectStandardizedMeanDiff EffectKind = "standardized_mean_difference"
	// EffectOrdinalDominance is Cliff's Delta, in [-1, 1].
	EffectOrdinalDominance EffectKind = "ordinal_dominance"
	// EffectNoVariation marks identical paired sequences: the effect is an
	// exact zero, not an absent value.
	EffectNoVariation EffectKind = "no_variation"
	// EffectUndefined marks combinations with too few observations.
	EffectUndefined EffectKind = "undefined"
)

// Outcome is the result of comparing one paired (or two-level) sample.
// PValue and EffectSize are nil when not computed; a nil EffectSize is
// distinct from the exact zero carried by a NoVariation outcome. Created once
// per combination and never mutated.
type Outcome struct {
	PValue     *float64   `json:"p_value,omitempty"`
	EffectSize *float64   `json:"effect_size,omitempty"`
	EffectKind EffectKind `json:"effect_size_kind"`
	TestKind   TestKind   `json:"test_kind"`
	SampleSize int        `json:"sample_size"`
}

// UndefinedOutcome is the defined result for fewer than two usable
// observations. Not an error.
func UndefinedOutcome(n int) Outcome {
	return Outcome{
		EffectKind: EffectUndefined,
		TestKind:   TestUndefined,
		SampleSize: n,
	}
}

// NoVariationOutcome is the defined result for elementwise-identical
// sequences: effect size exactly zero, no p-value.
func NoVariationOutcome(n int) Outcome {
	zero := 0.0
	return Outcome{
		EffectSize: &zero,
		EffectKind: EffectNoVariation,
		TestKind:   TestUndefined,
		SampleSize: n,
	}
}

// Row flattens one evaluated combination for the result table.
type Row struct {
	Key     measure.SampleKey `json:"key"`
	Outcome Outcome           `json:"outcome"`
}

// Float returns a pointer to v, for building outcomes.
func Float(v float64) *float64 { return &v }
