package seqstat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateKnownScenario(t *testing.T) {
	// control 100 events, test 150 events, 1000 clients per arm
	res := Evaluate(100, 1000, 150, 1000, 0.95)

	// p1 = 0.15, p2 = 0.10
	assert.InDelta(t, math.Sqrt(0.15/1000+0.10/1000), res.StandardError, 1e-12)

	// lift is control-over-test
	assert.InDelta(t, 0.10/0.15, res.Lift, 1e-9)

	// the test arm wins, so z is negative
	assert.Negative(t, res.ZScore)
	assert.InDelta(t, -0.05/res.StandardError, res.ZScore, 1e-9)

	assert.GreaterOrEqual(t, res.PValue, 0.0)
	assert.LessOrEqual(t, res.PValue, 1.0)
	assert.Less(t, res.PValue, 0.05)

	// |0.667 - 1| = 0.333 > 0.05
	assert.True(t, res.IsPracticallySignificant)
	assert.False(t, res.SmallSampleWarning)

	// test beating control makes the true diff very likely below zero
	assert.Greater(t, res.ProbBBetterA, 0.99)
}

func TestEvaluatePValueRange(t *testing.T) {
	cases := []struct {
		control, test           float64
		controlTrials, testTrials int64
	}{
		{0, 0, 1000, 1000},
		{1, 1, 1000, 1000},
		{50, 50, 500, 500},
		{100, 150, 1000, 1000},
		{900, 100, 1000, 1000},
		{3, 5, 40, 40},
	}
	for _, c := range cases {
		res := Evaluate(c.control, c.controlTrials, c.test, c.testTrials, 0.95)
		assert.GreaterOrEqual(t, res.PValue, 0.0)
		assert.LessOrEqual(t, res.PValue, 1.0)
	}
}

func TestEvaluateDegenerateDefaults(t *testing.T) {
	// zero sample sizes produce NaN z and NaN p, which collapse to (1, 0)
	res := Evaluate(10, 0, 20, 0, 0.95)
	assert.Equal(t, 1.0, res.PValue)
	assert.Equal(t, 0.0, res.ZScore)

	// zero counts with live denominators also degenerate
	res = Evaluate(0, 1000, 0, 1000, 0.95)
	assert.Equal(t, 1.0, res.PValue)
	assert.Equal(t, 0.0, res.ZScore)
	// other fields keep their computed values
	assert.Equal(t, 0.0, res.StandardError)
	assert.True(t, math.IsNaN(res.Lift))
	assert.False(t, res.IsPracticallySignificant)
}

func TestEvaluateDegenerateDegreesOfFreedom(t *testing.T) {
	// a single trial in one arm zeroes the Welch-Satterthwaite df while z
	// stays finite; the p-value stays NaN instead of collapsing to 1, so an
	// untestable comparison is distinguishable from a null verdict
	res := Evaluate(1, 1, 20, 40, 0.95)
	assert.True(t, math.IsNaN(res.PValue))
	assert.False(t, math.IsNaN(res.ZScore))
	assert.NotEqual(t, 0.0, res.ZScore)

	res = Evaluate(20, 40, 1, 1, 0.95)
	assert.True(t, math.IsNaN(res.PValue))
	assert.False(t, math.IsNaN(res.ZScore))
}

func TestEvaluateSmallSampleWarning(t *testing.T) {
	// either arm below 30 trials warns regardless of the other inputs
	res := Evaluate(10, 29, 15, 1000, 0.95)
	assert.True(t, res.SmallSampleWarning)

	res = Evaluate(10, 1000, 15, 29, 0.95)
	assert.True(t, res.SmallSampleWarning)

	// low pooled expected count warns even with many trials
	res = Evaluate(1, 1000, 1, 1000, 0.95)
	assert.True(t, res.SmallSampleWarning)

	res = Evaluate(100, 1000, 150, 1000, 0.95)
	assert.False(t, res.SmallSampleWarning)
}

func TestEvaluateConfidenceInterval(t *testing.T) {
	res := Evaluate(100, 1000, 150, 1000, 0.95)

	diff := 0.10 - 0.15
	half := (res.ConfidenceInterval[1] - res.ConfidenceInterval[0]) / 2
	center := (res.ConfidenceInterval[0] + res.ConfidenceInterval[1]) / 2
	assert.InDelta(t, diff, center, 1e-12)
	assert.Positive(t, half)

	// quadrupling the sample sizes (same rates) shrinks the interval
	narrower := Evaluate(400, 4000, 600, 4000, 0.95)
	narrowHalf := (narrower.ConfidenceInterval[1] - narrower.ConfidenceInterval[0]) / 2
	assert.Less(t, narrowHalf, half)

	// 99% confidence widens the interval
	wider := Evaluate(100, 1000, 150, 1000, 0.99)
	widerHalf := (wider.ConfidenceInterval[1] - wider.ConfidenceInterval[0]) / 2
	assert.Greater(t, widerHalf, half)
}

func TestEvaluatePowerGrowsWithEffect(t *testing.T) {
	weak := Evaluate(100, 1000, 105, 1000, 0.95)
	strong := Evaluate(100, 1000, 200, 1000, 0.95)
	assert.Greater(t, strong.Power, weak.Power)
	assert.GreaterOrEqual(t, strong.Power, 0.0)
	assert.LessOrEqual(t, strong.Power, 1.0)
}

func TestEvaluateDefaultConfidenceLevel(t *testing.T) {
	explicit := Evaluate(100, 1000, 150, 1000, 0.95)
	defaulted := Evaluate(100, 1000, 150, 1000, 0)
	assert.Equal(t, explicit, defaulted)
}
