package measure

import (
	"fmt"
	"math"
	"strings"
)

// Metric names one tracked measurement column of the experiment.
type Metric string

const (
	MetricEnergy  Metric = "energy"  // joules over the run
	MetricRuntime Metric = "runtime" // seconds
	MetricMemory  Metric = "memory"  // peak resident MB
)

// AllMetrics returns the tracked metrics in canonical order.
func AllMetrics() []Metric {
	return []Metric{MetricEnergy, MetricRuntime, MetricMemory}
}

// ParseMetric validates a metric column name.
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case MetricEnergy:
		return MetricEnergy, nil
	case MetricRuntime:
		return MetricRuntime, nil
	case MetricMemory:
		return MetricMemory, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Variant is one of the two compared treatment labels (e.g. the OCR engines).
type Variant string

// GroupKey is the canonical encoding of one combination of grouping factor
// values, with components joined by "|" in caller-declared factor order.
// Keys compare lexicographically, which gives the engine its deterministic
// row ordering.
type GroupKey string

// GroupKeySeparator joins factor values inside a GroupKey. Factor values must
// not contain it; the loader rejects values that do.
const GroupKeySeparator = "|"

// NewGroupKey builds a key from ordered factor values.
func NewGroupKey(values ...string) GroupKey {
	return GroupKey(strings.Join(values, GroupKeySeparator))
}

// Parts returns the ordered factor values encoded in the key.
func (k GroupKey) Parts() []string {
	if k == "" {
		return nil
	}
	return strings.Split(string(k), GroupKeySeparator)
}

func (k GroupKey) String() string { return string(k) }

// MeasurementRecord is one experimental run. Immutable once recorded.
type MeasurementRecord struct {
	Variant Variant            `json:"variant"`
	Key     GroupKey           `json:"group_key"`
	Values  map[Metric]float64 `json:"values"`
}

// Finite reports whether every metric value of the record is a finite number.
func (r MeasurementRecord) Finite() bool {
	for _, v := range r.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// SampleKey addresses one (group, metric) combination in the engine input.
type SampleKey struct {
	Group  GroupKey `json:"group_key"`
	Metric Metric   `json:"metric"`
}

// Less orders keys lexicographically by group, then metric.
func (k SampleKey) Less(other SampleKey) bool {
	if k.Group != other.Group {
		return k.Group < other.Group
	}
	return k.Metric < other.Metric
}

// PairedSample holds the two variant sequences for one (group, metric)
// combination, aligned by run order within the group. The sequences may have
// different lengths; consumers truncate to the shorter one (documented policy,
// see stats/paired).
type PairedSample struct {
	VariantA []float64 `json:"variant_a_values"`
	VariantB []float64 `json:"variant_b_values"`
}

// Len returns the number of usable pairs (the shorter length).
func (s PairedSample) Len() int {
	if len(s.VariantA) < len(s.VariantB) {
		return len(s.VariantA)
	}
	return len(s.VariantB)
}

// TwoLevelSample holds the observations of each level of a two-level factor
// for one (group, metric) combination. Levels are independent samples with no
// pairing; lengths may differ and are never aligned by position.
type TwoLevelSample struct {
	LevelA []float64 `json:"level_a_values"`
	LevelB []float64 `json:"level_b_values"`
}
