package types

import "github.com/liveops-hq/backend/internal/model"

// ExperimentSeriesRequest asks for the annotated time series of one observed
// metric of an experiment.
type ExperimentSeriesRequest struct {
	ExperimentID string                  `json:"experimentId" validate:"required"`
	Metric       model.MetricDescriptor  `json:"metric" validate:"required"`
	CupedMetric  *model.MetricDescriptor `json:"cupedMetric,omitempty"`
	CupedEnabled bool                    `json:"cupedEnabled"`
	CupedRange   *model.DateRange        `json:"cupedDateRange,omitempty"`
	DateRange    *model.DateRange        `json:"dateRange,omitempty"`
}

// MetricSeriesRequest asks for a plain (non-experiment) metric time series,
// optionally grouped by a session category field.
type MetricSeriesRequest struct {
	GameID    string                 `json:"gameId" validate:"required"`
	Branch    string                 `json:"branch" validate:"required"`
	Metric    model.MetricDescriptor `json:"metric" validate:"required"`
	DateRange *model.DateRange       `json:"dateRange,omitempty"`
	GroupBy   string                 `json:"groupBy,omitempty"`
}
