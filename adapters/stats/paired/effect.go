package paired

import (
	"github.com/montanaflynn/stats"
)

// CohenDPaired computes the standardized mean difference for paired data:
// mean of the differences over their sample standard deviation. Signed;
// positive means the first sequence tends larger. Unbounded, typically small.
func CohenDPaired(diffs []float64) float64 {
	if len(diffs) < 2 {
		return 0
	}
	mean, _ := stats.Mean(diffs)
	sd, _ := stats.StandardDeviationSample(diffs)
	if sd == 0 {
		return 0
	}
	return mean / sd
}

// CliffsDelta computes the ordinal-dominance effect size over all cross
// pairs: P(a > b) - P(a < b), in [-1, 1]. Signed; positive means the first
// sample tends larger. Quadratic in the input sizes, which stay in the tens
// for this workload.
func CliffsDelta(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var greater, lesser int
	for _, x := range a {
		for _, y := range b {
			switch {
			case x > y:
				greater++
			case x < y:
				lesser++
			}
		}
	}
	return float64(greater-lesser) / float64(len(a)*len(b))
}
