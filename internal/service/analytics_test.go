package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"github.com/liveops-hq/backend/internal/app/appconfig"
	"github.com/liveops-hq/backend/internal/model"
	"github.com/liveops-hq/backend/internal/model/types"
	"github.com/liveops-hq/backend/internal/pkg/apperr"
	"github.com/liveops-hq/backend/internal/repo"
)

func testDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

type fakeExperimentSource struct {
	experiment *model.Experiment
	err        error
}

func (f *fakeExperimentSource) GetExperimentByID(ctx context.Context, experimentID string) (*model.Experiment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.experiment, nil
}

type fakeMetricResolver struct {
	resolved *model.ResolvedMetric
	err      error
}

func (f *fakeMetricResolver) Resolve(ctx context.Context, gameID, branch string, d model.MetricDescriptor) (*model.ResolvedMetric, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resolved, nil
}

type fakeEventStore struct {
	rows  []model.TimeBucketRow
	sizes *model.SampleSizes
	pre   []model.DayValue

	rowsErr  error
	sizesErr error
}

func (f *fakeEventStore) CalcExperimentSeries(ctx context.Context, q *repo.ExperimentSeriesQuery) ([]model.TimeBucketRow, error) {
	return f.rows, f.rowsErr
}

func (f *fakeEventStore) CalcSampleSizes(ctx context.Context, q *repo.SampleSizesQuery) (*model.SampleSizes, error) {
	if f.sizesErr != nil {
		return nil, f.sizesErr
	}
	return f.sizes, nil
}

func (f *fakeEventStore) CalcDaySeries(ctx context.Context, q *repo.DaySeriesQuery) ([]model.DayValue, error) {
	return f.pre, nil
}

func (f *fakeEventStore) CalcCategoryCounts(ctx context.Context, q *repo.CategoryCountsQuery) ([]model.CategoryCount, error) {
	return nil, nil
}

func purchaseRequest(experimentID string) *types.ExperimentSeriesRequest {
	return &types.ExperimentSeriesRequest{
		ExperimentID: experimentID,
		Metric: model.MetricDescriptor{
			EventID:           "offer_purchased",
			AggregationMethod: "count",
		},
	}
}

func startedExperiment() *model.Experiment {
	return &model.Experiment{
		ExperimentID:   "e1",
		GameID:         "g1",
		Branch:         "live",
		StartDate:      null.TimeFrom(testDay(2024, 3, 1)),
		ControlSegment: "seg_control",
		TestSegment:    "seg_test",
	}
}

func countMetric() *model.ResolvedMetric {
	return &model.ResolvedMetric{
		EventID:           "offer_purchased",
		AggregationMethod: "count",
	}
}

func TestGetExperimentSeriesUnstartedExperiment(t *testing.T) {
	experiment := startedExperiment()
	experiment.StartDate = null.Time{}
	s := newAnalytics(&appconfig.Config{},
		&fakeExperimentSource{experiment: experiment},
		&fakeMetricResolver{resolved: countMetric()},
		&fakeEventStore{})

	rows, err := s.GetExperimentSeries(context.Background(), purchaseRequest("e1"))
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	sizes, err := s.GetSampleSizes(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, &model.SampleSizes{}, sizes)
}

func TestGetExperimentSeriesMissingExperiment(t *testing.T) {
	s := newAnalytics(&appconfig.Config{},
		&fakeExperimentSource{err: apperr.ErrNotFound},
		&fakeMetricResolver{resolved: countMetric()},
		&fakeEventStore{})

	rows, err := s.GetExperimentSeries(context.Background(), purchaseRequest("gone"))
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGetExperimentSeriesStaleSchema(t *testing.T) {
	s := newAnalytics(&appconfig.Config{},
		&fakeExperimentSource{experiment: startedExperiment()},
		&fakeMetricResolver{err: apperr.ErrSchemaNotFound},
		&fakeEventStore{})

	rows, err := s.GetExperimentSeries(context.Background(), purchaseRequest("e1"))
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGetExperimentSeriesStoreFailure(t *testing.T) {
	s := newAnalytics(&appconfig.Config{},
		&fakeExperimentSource{experiment: startedExperiment()},
		&fakeMetricResolver{resolved: countMetric()},
		&fakeEventStore{
			rowsErr: errors.New("store: connection reset"),
			sizes:   &model.SampleSizes{Control: 10, Test: 10},
		})

	rows, err := s.GetExperimentSeries(context.Background(), purchaseRequest("e1"))
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGetExperimentSeriesInvalidRequestPropagates(t *testing.T) {
	s := newAnalytics(&appconfig.Config{},
		&fakeExperimentSource{experiment: startedExperiment()},
		&fakeMetricResolver{err: apperr.ErrInvalidReq.Msg("unknown category field: planet")},
		&fakeEventStore{})

	rows, err := s.GetExperimentSeries(context.Background(), purchaseRequest("e1"))
	require.Error(t, err)
	assert.Nil(t, rows)

	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeInvalidRequest, appErr.ErrorCode)
}

func TestGetSampleSizesDegradesToZero(t *testing.T) {
	// missing experiment
	s := newAnalytics(&appconfig.Config{},
		&fakeExperimentSource{err: apperr.ErrNotFound},
		&fakeMetricResolver{}, &fakeEventStore{})
	sizes, err := s.GetSampleSizes(context.Background(), "gone")
	require.NoError(t, err)
	assert.Equal(t, &model.SampleSizes{}, sizes)

	// store failure
	s = newAnalytics(&appconfig.Config{},
		&fakeExperimentSource{experiment: startedExperiment()},
		&fakeMetricResolver{},
		&fakeEventStore{sizesErr: errors.New("store: timeout")})
	sizes, err = s.GetSampleSizes(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, &model.SampleSizes{}, sizes)
}

func TestGetExperimentSeriesAnnotatesAndSortsDesc(t *testing.T) {
	day1 := testDay(2024, 3, 1)
	day2 := testDay(2024, 3, 2)
	s := newAnalytics(&appconfig.Config{},
		&fakeExperimentSource{experiment: startedExperiment()},
		&fakeMetricResolver{resolved: countMetric()},
		&fakeEventStore{
			rows: []model.TimeBucketRow{
				{Bucket: day2, Control: 120, Test: 160},
				{Bucket: day1, Control: 100, Test: 150},
			},
			sizes: &model.SampleSizes{Control: 1000, Test: 1000},
		})

	rows, err := s.GetExperimentSeries(context.Background(), purchaseRequest("e1"))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// newest bucket first, cumulative totals folded oldest-first
	assert.Equal(t, day2, rows[0].Bucket)
	assert.Equal(t, 220.0, rows[0].CumulativeControl)
	assert.Equal(t, 310.0, rows[0].CumulativeTest)
	assert.Equal(t, day1, rows[1].Bucket)
	assert.Equal(t, 100.0, rows[1].CumulativeControl)
	assert.Equal(t, 150.0, rows[1].CumulativeTest)

	for _, row := range rows {
		assert.GreaterOrEqual(t, row.PValue, 0.0)
		assert.LessOrEqual(t, row.PValue, 1.0)
		assert.Positive(t, row.StandardError)
		// no covariate configured, so the adjustment passed through
		assert.Equal(t, 0.0, row.CupedTheta.Test)
	}

	// the test arm leads, so the cumulative z is negative
	assert.Negative(t, rows[0].ZScore)
}
