// Package cuped implements variance reduction using pre-experiment data
// (CUPED): a covariate measured before the experiment started absorbs part of
// the outcome's variance, tightening the downstream statistics.
package cuped

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/liveops-hq/backend/internal/model"
)

// OptimalTheta estimates the variance-minimizing coefficient for the
// covariate: cov(covariate, outcome) / var(covariate). A degenerate covariate
// with no variation yields 0, turning the adjustment into a no-op.
func OptimalTheta(covariate, outcome []float64) float64 {
	if len(covariate) < 2 || len(covariate) != len(outcome) {
		return 0
	}
	variance := stat.Variance(covariate, nil)
	if variance == 0 || math.IsNaN(variance) {
		return 0
	}
	theta := stat.Covariance(covariate, outcome, nil) / variance
	if math.IsNaN(theta) || math.IsInf(theta, 0) {
		return 0
	}
	return theta
}

// PreMean is the mean of the pre-experiment control series, 0 when empty.
func PreMean(series []model.DayValue) float64 {
	if len(series) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range series {
		sum += v.Value
	}
	return sum / float64(len(series))
}

// AdjustSeries applies the CUPED adjustment to every bucket of an experiment
// series. preSeries is the pre-experiment control covariate; a nil series
// passes rows through unmodified since CUPED is an optional refinement.
//
// Theta is estimated once per arm against the same covariate, on the
// per-sample-normalized outcomes. Each bucket is then adjusted on the
// normalized scale and multiplied back by the arm's sample size, so the
// cumulative fold and the statistical test downstream are unaffected by the
// normalization.
func AdjustSeries(rows []model.TimeBucketRow, preSeries []model.DayValue, sizes model.SampleSizes) []model.AdjustedRow {
	adjusted := make([]model.AdjustedRow, 0, len(rows))
	if preSeries == nil || sizes.Control == 0 || sizes.Test == 0 {
		for _, row := range rows {
			adjusted = append(adjusted, model.AdjustedRow{TimeBucketRow: row})
		}
		return adjusted
	}

	preMean := PreMean(preSeries)

	// With fewer covariate points than buckets the covariate collapses to its
	// mean, which has zero variation and therefore theta 0.
	covariate := make([]float64, len(rows))
	for i := range covariate {
		if i < len(preSeries) {
			covariate[i] = preSeries[i].Value
		} else {
			covariate[i] = preMean
		}
	}

	nControl := float64(sizes.Control)
	nTest := float64(sizes.Test)

	controlOutcome := make([]float64, len(rows))
	testOutcome := make([]float64, len(rows))
	for i, row := range rows {
		controlOutcome[i] = row.Control / nControl
		testOutcome[i] = row.Test / nTest
	}

	theta := model.CupedTheta{
		Control: OptimalTheta(covariate, controlOutcome),
		Test:    OptimalTheta(covariate, testOutcome),
	}

	for _, row := range rows {
		// A zero theta must leave values bit-identical, so skip the
		// normalize-denormalize round trip in that case.
		if theta.Control != 0 {
			row.Control = (row.Control/nControl - theta.Control*preMean) * nControl
		}
		if theta.Test != 0 {
			row.Test = (row.Test/nTest - theta.Test*preMean) * nTest
		}
		adjusted = append(adjusted, model.AdjustedRow{
			TimeBucketRow: row,
			CupedTheta:    theta,
		})
	}
	return adjusted
}
