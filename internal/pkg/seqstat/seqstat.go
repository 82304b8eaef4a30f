// Package seqstat computes per-bucket sequential-testing statistics over
// cumulative event counts, treating each arm's count as a Poisson rate
// normalized by the arm's total sample size.
package seqstat

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// DefaultConfidenceLevel applies when the caller supplies none.
	DefaultConfidenceLevel = 0.95

	// alpha is fixed for the power calculation regardless of the requested
	// confidence level.
	alpha = 0.05

	// practicalThreshold is the minimal detectable effect on the lift scale.
	practicalThreshold = 0.05

	smallSampleTrials   = 30
	smallSampleExpected = 5
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Result is the full statistical verdict for one time bucket.
type Result struct {
	PValue                   float64
	ZScore                   float64
	StandardError            float64
	Lift                     float64
	ConfidenceInterval       [2]float64
	Power                    float64
	ProbBBetterA             float64
	IsPracticallySignificant bool
	SmallSampleWarning       bool
}

// Evaluate tests cumulative control and test counts against their arm sample
// sizes. It is stateless; callers invoke it once per bucket with that
// bucket's running totals.
//
// The rates are modeled as Poisson, so each rate doubles as its own variance
// estimate. Lift is control-over-test. When both the p-value and the z-score
// degenerate to NaN the pair collapses to the conservative (1, 0) so callers
// can distinguish "no signal yet" from a computed verdict; every other field
// keeps its computed value. A degenerate df alone (a single trial in an arm)
// leaves the p-value NaN while z stays finite: the t-test is undefined there,
// and collapsing it would be indistinguishable from a real null verdict.
func Evaluate(control float64, controlTrials int64, test float64, testTrials int64, confidenceLevel float64) Result {
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		confidenceLevel = DefaultConfidenceLevel
	}

	n1 := float64(testTrials)
	n2 := float64(controlTrials)

	p1 := test / n1
	p2 := control / n2

	// Poisson assumption: the rate approximates its own variance.
	var1 := p1
	var2 := p2

	se := math.Sqrt(var1/n1 + var2/n2)

	// diff is control minus test throughout: the z-score, the confidence
	// interval and ProbBBetterA all share this orientation, so a winning
	// test arm shows up as a negative z.
	diff := p2 - p1
	z := diff / se

	df := welchSatterthwaite(var1, n1, var2, n2)

	// the (1, 0) collapse further down requires z to degenerate too; a bad df
	// with a finite z keeps the p-value NaN
	pValue := math.NaN()
	if !math.IsNaN(z) && !math.IsNaN(df) && df > 0 {
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		pValue = 2 * (1 - t.CDF(math.Abs(z)))
	}

	lift := math.NaN()
	if p1 != 0 {
		lift = p2 / p1
	}

	zAlpha := stdNormal.Quantile(1 - (1-confidenceLevel)/2)
	ci := [2]float64{diff - zAlpha*se, diff + zAlpha*se}

	effectSize := math.Abs(diff) / se
	power := stdNormal.CDF(effectSize - stdNormal.Quantile(1-alpha/2))

	probBBetterA := distuv.Normal{Mu: diff, Sigma: se}.CDF(0)

	pooled := (control + test) / (n2 + n1)
	total := n2 + n1
	smallSample := controlTrials < smallSampleTrials || testTrials < smallSampleTrials ||
		pooled*total < smallSampleExpected || (1-pooled)*total < smallSampleExpected

	// math.Abs(NaN) > x is false, so an undefined lift is never practically
	// significant.
	practical := math.Abs(lift-1) > practicalThreshold

	if math.IsNaN(pValue) && math.IsNaN(z) {
		pValue = 1
		z = 0
	}

	return Result{
		PValue:                   pValue,
		ZScore:                   z,
		StandardError:            se,
		Lift:                     lift,
		ConfidenceInterval:       ci,
		Power:                    power,
		ProbBBetterA:             probBBetterA,
		IsPracticallySignificant: practical,
		SmallSampleWarning:       smallSample,
	}
}

// welchSatterthwaite approximates the degrees of freedom for two samples with
// unequal variances.
func welchSatterthwaite(var1, n1, var2, n2 float64) float64 {
	a := var1 / n1
	b := var2 / n2
	return (a + b) * (a + b) / (a*a/(n1-1) + b*b/(n2-1))
}
