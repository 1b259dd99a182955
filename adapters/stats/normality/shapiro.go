// Package normality decides whether a numeric sequence is plausibly drawn
// from a normal distribution. The verdict gates the comparison engine's
// choice between the parametric and rank-based paired tests.
package normality

import (
	"math"
	"sort"

	"ocrstat/adapters/stats/dist"
	"ocrstat/domain/core"
)

// DefaultAlpha is the classification boundary applied when no threshold is
// configured: p >= alpha reads as "plausibly normal".
const DefaultAlpha = 0.05

// MinSampleSize is the smallest sequence the Shapiro-Wilk statistic is
// defined for. Shorter sequences classify as untestable, not as errors.
const MinSampleSize = 3

// Classifier applies the Shapiro-Wilk test with a fixed alpha.
type Classifier struct {
	alpha float64
}

// NewClassifier validates alpha and builds a classifier. Alpha outside (0,1)
// is a configuration error, fatal at startup.
func NewClassifier(alpha float64) (*Classifier, error) {
	if alpha <= 0 || alpha >= 1 || math.IsNaN(alpha) {
		return nil, core.NewAlphaError(alpha)
	}
	return &Classifier{alpha: alpha}, nil
}

// Alpha returns the configured classification boundary.
func (c *Classifier) Alpha() float64 { return c.alpha }

// Classify returns the Shapiro-Wilk p-value for the sequence, or nil when the
// sequence is untestable (fewer than three observations, or zero variance).
// Pure function of its input.
func (c *Classifier) Classify(sequence []float64) *float64 {
	_, p, ok := ShapiroWilk(sequence)
	if !ok {
		return nil
	}
	return &p
}

// PlausiblyNormal applies the downstream decision rule: the p-value is
// present and at least alpha.
func (c *Classifier) PlausiblyNormal(p *float64) bool {
	return p != nil && *p >= c.alpha
}

// ShapiroWilk computes the W statistic and its p-value following Royston's
// AS R94 algorithm (valid for 3 <= n <= 5000). ok is false when the statistic
// is undefined for the input: n < 3 or a zero-variance sequence.
func ShapiroWilk(data []float64) (w, p float64, ok bool) {
	n := len(data)
	if n < MinSampleSize {
		return 0, 0, false
	}

	x := make([]float64, n)
	copy(x, data)
	sort.Float64s(x)

	if x[0] == x[n-1] {
		// Constant sequence: W is 0/0, the test cannot speak.
		return 0, 0, false
	}

	d := dist.New()

	// Expected normal order statistics (Blom-type plotting positions).
	m := make([]float64, n)
	var mm2 float64
	for i := 0; i < n; i++ {
		m[i] = d.NormalQuantile((float64(i+1) - 0.375) / (float64(n) + 0.25))
		mm2 += m[i] * m[i]
	}

	// Royston polynomial corrections for the top one or two weights.
	a := make([]float64, n)
	rsn := 1.0 / math.Sqrt(float64(n))
	aN := polyval([]float64{0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}, rsn) +
		m[n-1]/math.Sqrt(mm2)

	if n > 5 {
		aN1 := polyval([]float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}, rsn) +
			m[n-2]/math.Sqrt(mm2)
		phi := (mm2 - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) /
			(1 - 2*aN*aN - 2*aN1*aN1)
		for i := 2; i < n-2; i++ {
			a[i] = m[i] / math.Sqrt(phi)
		}
		a[n-1], a[n-2] = aN, aN1
		a[0], a[1] = -aN, -aN1
	} else {
		phi := (mm2 - 2*m[n-1]*m[n-1]) / (1 - 2*aN*aN)
		for i := 1; i < n-1; i++ {
			a[i] = m[i] / math.Sqrt(phi)
		}
		a[n-1] = aN
		a[0] = -aN
	}

	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	var num, ssq float64
	for i := 0; i < n; i++ {
		num += a[i] * x[i]
		dev := x[i] - mean
		ssq += dev * dev
	}
	if ssq == 0 {
		return 0, 0, false
	}

	w = num * num / ssq
	if w > 1 {
		w = 1
	}

	return w, shapiroPValue(w, n), true
}

// shapiroPValue maps W to a p-value via Royston's normalizing transforms.
func shapiroPValue(w float64, n int) float64 {
	if n == 3 {
		// Exact for n = 3: asin(sqrt(3/4)) is the null lower bound of sqrt(W).
		const pi6 = 1.90985931710274
		const stqr = 1.04719755119660
		p := pi6 * (math.Asin(math.Sqrt(w)) - stqr)
		return clamp01(p)
	}

	nf := float64(n)
	var z float64
	if n <= 11 {
		gamma := -2.273 + 0.459*nf
		arg := gamma - math.Log1p(-w)
		if arg <= 0 {
			return 0
		}
		y := -math.Log(arg)
		mu := polyval([]float64{0.5440, -0.39978, 0.025054, -0.0006714}, nf)
		sigma := math.Exp(polyval([]float64{1.3822, -0.77857, 0.062767, -0.0020322}, nf))
		z = (y - mu) / sigma
	} else {
		ln := math.Log(nf)
		y := math.Log1p(-w)
		mu := polyval([]float64{-1.5861, -0.31082, -0.083751, 0.0038915}, ln)
		sigma := math.Exp(polyval([]float64{-0.4803, -0.082676, 0.0030302}, ln))
		z = (y - mu) / sigma
	}

	return clamp01(1 - dist.New().NormalCDF(z))
}

// polyval evaluates coefficients[0] + coefficients[1]*x + ... by Horner's rule.
func polyval(coefficients []float64, x float64) float64 {
	v := 0.0
	for i := len(coefficients) - 1; i >= 0; i-- {
		v = v*x + coefficients[i]
	}
	return v
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
