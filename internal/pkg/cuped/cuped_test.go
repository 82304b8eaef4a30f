package cuped

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/liveops-hq/backend/internal/model"
)

func day(n int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestOptimalTheta(t *testing.T) {
	// perfectly correlated with slope 2
	covariate := []float64{1, 2, 3, 4}
	outcome := []float64{2, 4, 6, 8}
	assert.InDelta(t, 2.0, OptimalTheta(covariate, outcome), 1e-9)

	// no variation in the covariate
	assert.Zero(t, OptimalTheta([]float64{5, 5, 5}, []float64{1, 2, 3}))

	// degenerate inputs
	assert.Zero(t, OptimalTheta([]float64{1}, []float64{2}))
	assert.Zero(t, OptimalTheta([]float64{1, 2}, []float64{1}))
	assert.Zero(t, OptimalTheta(nil, nil))
}

func TestPreMean(t *testing.T) {
	assert.Zero(t, PreMean(nil))
	assert.Zero(t, PreMean([]model.DayValue{}))
	assert.InDelta(t, 2.0, PreMean([]model.DayValue{
		{Bucket: day(0), Value: 1},
		{Bucket: day(1), Value: 3},
	}), 1e-9)
}

func TestAdjustSeriesPassthroughWithoutPreData(t *testing.T) {
	rows := []model.TimeBucketRow{
		{Bucket: day(0), Control: 10, Test: 12},
		{Bucket: day(1), Control: 20, Test: 18},
	}
	adjusted := AdjustSeries(rows, nil, model.SampleSizes{Control: 100, Test: 100})
	assert.Len(t, adjusted, 2)
	for i, row := range adjusted {
		assert.Equal(t, rows[i].Control, row.Control)
		assert.Equal(t, rows[i].Test, row.Test)
		assert.Zero(t, row.CupedTheta.Control)
		assert.Zero(t, row.CupedTheta.Test)
	}
}

func TestAdjustSeriesZeroThetaIsNoOp(t *testing.T) {
	rows := []model.TimeBucketRow{
		{Bucket: day(0), Control: 7, Test: 9},
		{Bucket: day(1), Control: 3, Test: 5},
	}
	// empty but present pre-series: preMean 0, covariate has no variation
	adjusted := AdjustSeries(rows, []model.DayValue{}, model.SampleSizes{Control: 30, Test: 30})
	assert.Len(t, adjusted, 2)
	for i, row := range adjusted {
		assert.Equal(t, rows[i].Control, row.Control)
		assert.Equal(t, rows[i].Test, row.Test)
		assert.Zero(t, row.CupedTheta.Control)
	}
}

func TestAdjustSeriesShiftsByThetaTimesPreMean(t *testing.T) {
	rows := []model.TimeBucketRow{
		{Bucket: day(0), Control: 100, Test: 110},
		{Bucket: day(1), Control: 200, Test: 190},
		{Bucket: day(2), Control: 300, Test: 330},
	}
	pre := []model.DayValue{
		{Bucket: day(-3), Value: 1},
		{Bucket: day(-2), Value: 2},
		{Bucket: day(-1), Value: 3},
	}
	sizes := model.SampleSizes{Control: 1000, Test: 1000}

	adjusted := AdjustSeries(rows, pre, sizes)
	assert.Len(t, adjusted, 3)

	thetaControl := adjusted[0].CupedTheta.Control
	assert.NotZero(t, thetaControl)
	preMean := PreMean(pre)

	for i, row := range adjusted {
		// theta is a per-run constant duplicated onto every row
		assert.Equal(t, thetaControl, row.CupedTheta.Control)

		want := (rows[i].Control/1000 - thetaControl*preMean) * 1000
		assert.InDelta(t, want, row.Control, 1e-9)
	}

	// the two arms regress independently against the same covariate
	assert.NotEqual(t, adjusted[0].CupedTheta.Control, adjusted[0].CupedTheta.Test)
}
