package model

import "time"

// TimeBucketRow is one day of raw aggregation output, before CUPED adjustment.
type TimeBucketRow struct {
	Bucket  time.Time `bun:"bucket" json:"timestamp"`
	Control float64   `bun:"control" json:"control"`
	Test    float64   `bun:"test" json:"test"`
}

// SampleSizes is the total distinct audience per arm over the test's elapsed
// lifetime. Both counts are non-negative. They denominate proportion-style
// statistics and are not recomputed per bucket.
type SampleSizes struct {
	Control int64 `bun:"control" json:"control"`
	Test    int64 `bun:"test" json:"test"`
}

// CupedTheta carries the per-arm variance-reduction coefficients. The values
// are per-run constants duplicated onto every row for auditability.
type CupedTheta struct {
	Control float64 `json:"control"`
	Test    float64 `json:"test"`
}

// AdjustedRow is a TimeBucketRow after CUPED adjustment.
type AdjustedRow struct {
	TimeBucketRow
	CupedTheta CupedTheta `json:"cupedTheta"`
}

// AnnotatedRow is the unit returned to callers: a day's adjusted values plus
// running totals and the full set of sequential-test statistics. It is
// computed per request and never persisted by this engine.
type AnnotatedRow struct {
	AdjustedRow
	CumulativeControl        float64    `json:"cumulativeControl"`
	CumulativeTest           float64    `json:"cumulativeTest"`
	PValue                   float64    `json:"pValue"`
	ZScore                   float64    `json:"zScore"`
	StandardError            float64    `json:"standardError"`
	Lift                     float64    `json:"lift"`
	ConfidenceInterval       [2]float64 `json:"confidenceInterval"`
	Power                    float64    `json:"power"`
	ProbBBetterA             float64    `json:"probBBetterA"`
	IsPracticallySignificant bool       `json:"isPracticallySignificant"`
	SmallSampleWarning       bool       `json:"smallSampleWarning"`
}

// DayValue is one day of a single-series aggregation, used for the CUPED
// pre-experiment fetch and the generic analytics path.
type DayValue struct {
	Bucket time.Time `bun:"bucket" json:"timestamp"`
	Value  float64   `bun:"value" json:"value"`
}

// CategoryCount is one grouped value with its occurrence count, used by the
// mostCommon and leastCommon aggregations.
type CategoryCount struct {
	Value string `bun:"value" json:"value"`
	Count int64  `bun:"count" json:"count"`
}

// DateRange is a closed-open interval of absolute time.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
