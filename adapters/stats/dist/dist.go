package dist

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions provides unified access to the distribution functions the
// comparison engine needs, replacing ad-hoc CDF approximations.
type Distributions struct{}

// New creates a new distributions utility
func New() *Distributions {
	return &Distributions{}
}

// TTestPValue computes the two-tailed p-value for a t-statistic using
// Student's t-distribution.
func (d *Distributions) TTestPValue(tStatistic float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(degreesOfFreedom)}
	return 2 * (1 - tDist.CDF(math.Abs(tStatistic)))
}

// NormalCDF computes the cumulative distribution function of the standard normal.
func (d *Distributions) NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormalQuantile computes the standard normal quantile function (inverse CDF).
func (d *Distributions) NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// WilcoxonSignedRankPValue computes the two-tailed p-value for the signed-rank
// statistic wPlus (sum of positive ranks) over n non-zero differences.
// tieAdjust is sum(t^3 - t) over tied |difference| groups; when it is zero and
// n is small the exact null distribution is enumerated, otherwise the normal
// approximation with tie-corrected variance applies.
func (d *Distributions) WilcoxonSignedRankPValue(wPlus float64, n int, tieAdjust float64) float64 {
	if n <= 0 {
		return 1.0
	}

	if n <= 10 && tieAdjust == 0 {
		return d.wilcoxonExactTwoSidedPValue(wPlus, n)
	}

	meanW := float64(n*(n+1)) / 4.0
	varW := float64(n*(n+1)*(2*n+1))/24.0 - tieAdjust/48.0
	if varW <= 0 {
		return 1.0
	}

	z := (wPlus - meanW) / math.Sqrt(varW)
	p := 2 * (1 - d.NormalCDF(math.Abs(z)))
	if p > 1.0 {
		p = 1.0
	}
	return p
}

// wilcoxonExactTwoSidedPValue enumerates the null distribution of W+ for
// small untied samples via subset-sum counting over ranks 1..n.
func (d *Distributions) wilcoxonExactTwoSidedPValue(wPlus float64, n int) float64 {
	// W+ is integer-valued without ties; round to be robust to float noise.
	wObs := int(math.Round(wPlus))
	if wObs < 0 {
		wObs = 0
	}

	totalRankSum := n * (n + 1) / 2
	if wObs > totalRankSum {
		wObs = totalRankSum
	}

	// Two-sided p-value by symmetry: P(W+ <= w) with w = min(W+, total-W+), doubled.
	w := wObs
	if totalRankSum-wObs < w {
		w = totalRankSum - wObs
	}

	// dp[s] = number of sign assignments producing W+ = s.
	dp := make([]uint64, totalRankSum+1)
	dp[0] = 1
	for r := 1; r <= n; r++ {
		for s := totalRankSum; s >= r; s-- {
			dp[s] += dp[s-r]
		}
	}

	totalOutcomes := uint64(1) << uint(n)
	var cum uint64
	for s := 0; s <= w; s++ {
		cum += dp[s]
	}

	pTwoSide := 2 * float64(cum) / float64(totalOutcomes)
	if pTwoSide > 1.0 {
		pTwoSide = 1.0
	}
	return pTwoSide
}

// MannWhitneyPValue computes the two-tailed p-value for the Mann-Whitney U
// statistic over independent samples of sizes n1 and n2, using the normal
// approximation with tie-corrected variance. tieAdjust is sum(t^3 - t) over
// tied value groups of the pooled sample.
func (d *Distributions) MannWhitneyPValue(uStatistic float64, n1, n2 int, tieAdjust float64) float64 {
	if n1 <= 0 || n2 <= 0 {
		return 1.0
	}

	nTotal := float64(n1 + n2)
	meanU := float64(n1*n2) / 2.0
	varU := float64(n1*n2) / 12.0 * (nTotal + 1 - tieAdjust/(nTotal*(nTotal-1)))
	if varU <= 0 {
		return 1.0
	}

	z := (uStatistic - meanU) / math.Sqrt(varU)
	p := 2 * (1 - d.NormalCDF(math.Abs(z)))
	if p > 1.0 {
		p = 1.0
	}
	return p
}
