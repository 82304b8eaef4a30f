package service

import (
	"context"
	"time"

	linq "github.com/ahmetb/go-linq/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/liveops-hq/backend/internal/app/appconfig"
	"github.com/liveops-hq/backend/internal/constant"
	"github.com/liveops-hq/backend/internal/model"
	"github.com/liveops-hq/backend/internal/model/types"
	"github.com/liveops-hq/backend/internal/pkg/apperr"
	"github.com/liveops-hq/backend/internal/pkg/async"
	"github.com/liveops-hq/backend/internal/pkg/cuped"
	"github.com/liveops-hq/backend/internal/pkg/daybucket"
	"github.com/liveops-hq/backend/internal/pkg/seqstat"
	"github.com/liveops-hq/backend/internal/repo"
	"github.com/liveops-hq/backend/internal/util"
)

// ExperimentSource supplies experiment definitions; a missing experiment
// surfaces as apperr.ErrNotFound.
type ExperimentSource interface {
	GetExperimentByID(ctx context.Context, experimentID string) (*model.Experiment, error)
}

// MetricResolver turns metric descriptors into store field references.
type MetricResolver interface {
	Resolve(ctx context.Context, gameID, branch string, d model.MetricDescriptor) (*model.ResolvedMetric, error)
}

// EventStore executes the synthesized aggregation queries.
type EventStore interface {
	CalcExperimentSeries(ctx context.Context, q *repo.ExperimentSeriesQuery) ([]model.TimeBucketRow, error)
	CalcSampleSizes(ctx context.Context, q *repo.SampleSizesQuery) (*model.SampleSizes, error)
	CalcDaySeries(ctx context.Context, q *repo.DaySeriesQuery) ([]model.DayValue, error)
	CalcCategoryCounts(ctx context.Context, q *repo.CategoryCountsQuery) ([]model.CategoryCount, error)
}

// Analytics orchestrates the experiment analysis pipeline: metric resolution,
// concurrent store reads, CUPED adjustment, cumulative folding and the
// per-bucket statistical test.
type Analytics struct {
	conf        *appconfig.Config
	experiments ExperimentSource
	metrics     MetricResolver
	store       EventStore
}

func NewAnalytics(conf *appconfig.Config, experimentService *Experiment, metricService *Metric, eventRepo *repo.Event) *Analytics {
	return newAnalytics(conf, experimentService, metricService, eventRepo)
}

func newAnalytics(conf *appconfig.Config, experiments ExperimentSource, metrics MetricResolver, store EventStore) *Analytics {
	return &Analytics{
		conf:        conf,
		experiments: experiments,
		metrics:     metrics,
		store:       store,
	}
}

// GetExperimentSeries computes the annotated time series of one metric of an
// experiment, newest bucket first.
//
// A stale or incomplete experiment definition (missing experiment, no start
// date, schema no longer carrying the metric) and store execution failures
// all yield an empty series with a log line, never partial statistics.
// Malformed requests are the only errors that propagate.
func (s *Analytics) GetExperimentSeries(ctx context.Context, req *types.ExperimentSeriesRequest) ([]*model.AnnotatedRow, error) {
	experiment, err := s.experiments.GetExperimentByID(ctx, req.ExperimentID)
	if err != nil {
		return s.emptySeries(err, req.ExperimentID, "failed to load experiment")
	}
	if !experiment.StartDate.Valid {
		log.Info().Str("experimentId", req.ExperimentID).Msg("experiment has not started yet")
		return []*model.AnnotatedRow{}, nil
	}
	startDate := experiment.StartDate.Time

	resolved, err := s.metrics.Resolve(ctx, experiment.GameID, experiment.Branch, req.Metric)
	if err != nil {
		return s.emptySeries(err, req.ExperimentID, "failed to resolve metric")
	}

	now := time.Now()
	interval := daybucket.ExperimentRange(startDate, req.DateRange, now)
	lifetime := daybucket.ExperimentRange(startDate, nil, now)
	participation := constant.ParticipationSegmentPrefix + experiment.ExperimentID

	var (
		rows  []model.TimeBucketRow
		sizes *model.SampleSizes
		pre   []model.DayValue
	)
	err = async.WaitAll(
		async.Errable(func() (innerErr error) {
			rows, innerErr = s.store.CalcExperimentSeries(ctx, &repo.ExperimentSeriesQuery{
				GameID:               experiment.GameID,
				Branch:               experiment.Branch,
				Metric:               *resolved,
				Range:                interval,
				ParticipationSegment: participation,
				ControlSegment:       experiment.ControlSegment,
				TestSegment:          experiment.TestSegment,
			})
			return innerErr
		}),
		async.Errable(func() (innerErr error) {
			sizes, innerErr = s.store.CalcSampleSizes(ctx, &repo.SampleSizesQuery{
				GameID:               experiment.GameID,
				Branch:               experiment.Branch,
				Range:                lifetime,
				ParticipationSegment: participation,
				ControlSegment:       experiment.ControlSegment,
				TestSegment:          experiment.TestSegment,
			})
			return innerErr
		}),
		async.Errable(func() error {
			pre = s.fetchCupedSeries(ctx, experiment, req, startDate)
			return nil
		}),
	)
	if err != nil {
		return s.emptySeries(err, req.ExperimentID, "failed to gather experiment data")
	}

	adjusted := cuped.AdjustSeries(rows, pre, *sizes)
	annotated := util.CumulativeFold(adjusted)
	for _, row := range annotated {
		res := seqstat.Evaluate(
			row.CumulativeControl, sizes.Control,
			row.CumulativeTest, sizes.Test,
			seqstat.DefaultConfidenceLevel,
		)
		row.PValue = res.PValue
		row.ZScore = res.ZScore
		row.StandardError = res.StandardError
		row.Lift = res.Lift
		row.ConfidenceInterval = res.ConfidenceInterval
		row.Power = res.Power
		row.ProbBBetterA = res.ProbBBetterA
		row.IsPracticallySignificant = res.IsPracticallySignificant
		row.SmallSampleWarning = res.SmallSampleWarning
	}
	util.SortSeriesDesc(annotated)
	return annotated, nil
}

// GetSampleSizes counts the distinct audience per arm over the experiment's
// elapsed lifetime. A missing experiment or start date trivially has zero
// participants, so the zero value comes back instead of an error.
func (s *Analytics) GetSampleSizes(ctx context.Context, experimentID string) (*model.SampleSizes, error) {
	experiment, err := s.experiments.GetExperimentByID(ctx, experimentID)
	if err != nil {
		log.Warn().Err(err).Str("experimentId", experimentID).Msg("failed to load experiment for sample sizes")
		return &model.SampleSizes{}, nil
	}
	if !experiment.StartDate.Valid {
		return &model.SampleSizes{}, nil
	}

	sizes, err := s.store.CalcSampleSizes(ctx, &repo.SampleSizesQuery{
		GameID:               experiment.GameID,
		Branch:               experiment.Branch,
		Range:                daybucket.ExperimentRange(experiment.StartDate.Time, nil, time.Now()),
		ParticipationSegment: constant.ParticipationSegmentPrefix + experiment.ExperimentID,
		ControlSegment:       experiment.ControlSegment,
		TestSegment:          experiment.TestSegment,
	})
	if err != nil {
		log.Error().Err(err).Str("experimentId", experimentID).Msg("failed to calculate sample sizes")
		return &model.SampleSizes{}, nil
	}
	return sizes, nil
}

// QueryMetricSeries serves the generic (non-experiment) analytics path: a
// day series, or a grouped count distribution for the mostCommon and
// leastCommon aggregations and for category grouping.
func (s *Analytics) QueryMetricSeries(ctx context.Context, req *types.MetricSeriesRequest) ([]model.DayValue, []model.CategoryCount, error) {
	resolved, err := s.metrics.Resolve(ctx, req.GameID, req.Branch, req.Metric)
	if err != nil {
		return nil, nil, err
	}

	rng := daybucket.DefaultRange(time.Now())
	if req.DateRange != nil {
		rng = daybucket.Normalize(*req.DateRange)
	}

	switch resolved.AggregationMethod {
	case constant.AggregationMostCommon, constant.AggregationLeastCommon:
		counts, err := s.store.CalcCategoryCounts(ctx, &repo.CategoryCountsQuery{
			GameID: req.GameID,
			Branch: req.Branch,
			Metric: *resolved,
			Range:  rng,
		})
		if err != nil {
			return nil, nil, err
		}
		if resolved.AggregationMethod == constant.AggregationLeastCommon {
			counts = lo.Reverse(counts)
		}
		return nil, counts, nil
	}

	if req.GroupBy != "" {
		groupColumn, ok := constant.SessionCategoryFields[req.GroupBy]
		if !ok {
			return nil, nil, apperr.ErrInvalidReq.Msg("unknown group field: %s", req.GroupBy)
		}
		counts, err := s.store.CalcCategoryCounts(ctx, &repo.CategoryCountsQuery{
			GameID:      req.GameID,
			Branch:      req.Branch,
			Metric:      *resolved,
			Range:       rng,
			GroupColumn: groupColumn,
		})
		if err != nil {
			return nil, nil, err
		}
		return nil, counts, nil
	}

	points, err := s.store.CalcDaySeries(ctx, &repo.DaySeriesQuery{
		GameID: req.GameID,
		Branch: req.Branch,
		Metric: *resolved,
		Range:  rng,
	})
	if err != nil {
		return nil, nil, err
	}
	return points, nil, nil
}

// fetchCupedSeries gathers the pre-experiment covariate for the control
// segment. CUPED is an optional refinement: any failure here logs and
// returns nil, which downstream treats as a silent passthrough.
func (s *Analytics) fetchCupedSeries(ctx context.Context, experiment *model.Experiment, req *types.ExperimentSeriesRequest, startDate time.Time) []model.DayValue {
	cupedMetric, cupedRange, enabled := cupedConfig(experiment, req)
	if !enabled || cupedMetric == nil {
		return nil
	}

	resolved, err := s.metrics.Resolve(ctx, experiment.GameID, experiment.Branch, *cupedMetric)
	if err != nil {
		log.Warn().Err(err).Str("experimentId", experiment.ExperimentID).Msg("failed to resolve cuped metric, skipping adjustment")
		return nil
	}

	pre, err := s.store.CalcDaySeries(ctx, &repo.DaySeriesQuery{
		GameID:    experiment.GameID,
		Branch:    experiment.Branch,
		Metric:    *resolved,
		Range:     daybucket.CupedRange(startDate, cupedRange),
		SegmentID: experiment.ControlSegment,
	})
	if err != nil {
		log.Warn().Err(err).Str("experimentId", experiment.ExperimentID).Msg("failed to fetch pre-experiment series, skipping adjustment")
		return nil
	}
	return pre
}

// cupedConfig picks the covariate configuration: the request's own settings
// win, otherwise the experiment's stored observed-metric entry for the same
// descriptor applies.
func cupedConfig(experiment *model.Experiment, req *types.ExperimentSeriesRequest) (*model.MetricDescriptor, *model.DateRange, bool) {
	if req.CupedMetric != nil {
		return req.CupedMetric, req.CupedRange, req.CupedEnabled
	}

	observed, found := linq.From(experiment.Metrics).FirstWith(func(i interface{}) bool {
		m := i.(model.ObservedMetric)
		return m.Metric.EventID == req.Metric.EventID &&
			m.Metric.TargetValueID == req.Metric.TargetValueID &&
			m.Metric.AggregationMethod == req.Metric.AggregationMethod
	}).(model.ObservedMetric)
	if !found {
		return nil, nil, false
	}
	return observed.CupedMetric, observed.CupedDateRange, observed.CupedEnabled
}

// emptySeries implements the configuration and store error taxonomy: log and
// return an empty series, propagating only malformed requests.
func (s *Analytics) emptySeries(err error, experimentID, msg string) ([]*model.AnnotatedRow, error) {
	var appErr *apperr.AppError
	if errors.As(err, &appErr) && appErr.ErrorCode == apperr.CodeInvalidRequest {
		return nil, err
	}
	log.Error().Err(err).Str("experimentId", experimentID).Msg(msg)
	return []*model.AnnotatedRow{}, nil
}
