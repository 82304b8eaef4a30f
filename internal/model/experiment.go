package model

import (
	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"
)

// Experiment is a stored A/B test definition. StartDate is set exactly once
// when the test is launched and anchors all interval math afterwards.
type Experiment struct {
	bun.BaseModel `bun:"experiments,alias:ex"`

	ExperimentID   string           `bun:"experiment_id,pk" json:"id"`
	GameID         string           `bun:"game_id" json:"gameId"`
	Branch         string           `bun:"branch" json:"branch"`
	Name           string           `bun:"name" json:"name"`
	StartDate      null.Time        `bun:"start_date" json:"startDate"`
	ControlSegment string           `bun:"control_segment" json:"controlSegment"`
	TestSegment    string           `bun:"test_segment" json:"testSegment"`
	Metrics        []ObservedMetric `bun:"metrics,type:jsonb" json:"observedMetrics"`
}

// ObservedMetric pairs a metric under observation with its optional CUPED
// covariate configuration.
type ObservedMetric struct {
	Metric         MetricDescriptor  `json:"metric"`
	CupedMetric    *MetricDescriptor `json:"cupedMetric,omitempty"`
	CupedEnabled   bool              `json:"cupedEnabled"`
	CupedDateRange *DateRange        `json:"cupedDateRange,omitempty"`
}
