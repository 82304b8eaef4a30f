package v1

import "time"

// ExperimentSeries is the API shape of an experiment analysis: the annotated
// rows ordered newest-first plus the arm sample sizes they were tested against.
type ExperimentSeries struct {
	ExperimentID string         `json:"experimentId"`
	SampleSizes  SampleSizes    `json:"sampleSizes"`
	Rows         []AnnotatedRow `json:"rows"`
}

type SampleSizes struct {
	Control int64 `json:"control"`
	Test    int64 `json:"test"`
}

type CupedTheta struct {
	Control float64 `json:"control"`
	Test    float64 `json:"test"`
}

type AnnotatedRow struct {
	Bucket                   time.Time  `json:"timestamp"`
	Control                  float64    `json:"control"`
	Test                     float64    `json:"test"`
	CupedTheta               CupedTheta `json:"cupedTheta"`
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

// MetricSeries is the API shape of a generic (non-experiment) metric query.
type MetricSeries struct {
	Points     []DayValue      `json:"points,omitempty"`
	Categories []CategoryCount `json:"categories,omitempty"`
}

type DayValue struct {
	Bucket time.Time `json:"timestamp"`
	Value  float64   `json:"value"`
}

type CategoryCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}
