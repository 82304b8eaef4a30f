package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liveops-hq/backend/internal/constant"
	"github.com/liveops-hq/backend/internal/model"
	"github.com/liveops-hq/backend/internal/pkg/apperr"
)

type fakeSchemaSource struct {
	schemas map[string]*model.EventSchema
}

func (f *fakeSchemaSource) GetEventSchema(_ context.Context, _, _, eventID string) (*model.EventSchema, error) {
	if s, ok := f.schemas[eventID]; ok {
		return s, nil
	}
	return nil, apperr.ErrNotFound
}

type fakeEntitySource struct{}

func (fakeEntitySource) OfferCodeNameToOfferID(_ context.Context, _, _, codeName string) (string, error) {
	return "offer-node-" + codeName, nil
}

func (fakeEntitySource) EntityIDToNodeID(_ context.Context, _, _, entityID string) (string, error) {
	return "node-" + entityID, nil
}

func newTestMetric(schemas map[string]*model.EventSchema) *Metric {
	return newMetric(&fakeSchemaSource{schemas: schemas}, fakeEntitySource{})
}

func TestResolveReservedEvent(t *testing.T) {
	s := newTestMetric(nil)

	resolved, err := s.Resolve(context.Background(), "g1", "live", model.MetricDescriptor{
		EventID:           constant.EventOfferPurchased,
		TargetValueID:     "field3",
		AggregationMethod: constant.AggregationSum,
	})
	require.NoError(t, err)
	assert.Equal(t, model.FieldRef{Kind: model.FieldColumn, Name: "amount"}, resolved.Target)
	assert.Equal(t, constant.AggregationSum, resolved.AggregationMethod)
}

func TestResolveDesignEvent(t *testing.T) {
	s := newTestMetric(map[string]*model.EventSchema{
		"level_finished": {
			GameID:  "g1",
			Branch:  "live",
			EventID: "level_finished",
			Values: []model.SchemaValue{
				{UniqueID: "u-1", ValueID: "score"},
				{UniqueID: "u-2", ValueID: "amount"},
			},
		},
	})

	// a non-reserved value id falls back to payload access
	resolved, err := s.Resolve(context.Background(), "g1", "live", model.MetricDescriptor{
		EventID:           "level_finished",
		TargetValueID:     "u-1",
		AggregationMethod: constant.AggregationMean,
	})
	require.NoError(t, err)
	assert.Equal(t, model.FieldRef{Kind: model.FieldPayload, Name: "score"}, resolved.Target)

	// a reserved value id resolves to its column
	resolved, err = s.Resolve(context.Background(), "g1", "live", model.MetricDescriptor{
		EventID:           "level_finished",
		TargetValueID:     "u-2",
		AggregationMethod: constant.AggregationSum,
	})
	require.NoError(t, err)
	assert.Equal(t, model.FieldRef{Kind: model.FieldColumn, Name: "amount"}, resolved.Target)
}

func TestResolveSchemaNotFound(t *testing.T) {
	s := newTestMetric(map[string]*model.EventSchema{
		"level_finished": {EventID: "level_finished", Values: []model.SchemaValue{{UniqueID: "u-1", ValueID: "score"}}},
	})

	// unknown design event
	_, err := s.Resolve(context.Background(), "g1", "live", model.MetricDescriptor{
		EventID:           "gone_event",
		TargetValueID:     "u-1",
		AggregationMethod: constant.AggregationSum,
	})
	require.Error(t, err)
	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeSchemaNotFound, appErr.ErrorCode)

	// value slot deleted from an existing schema
	_, err = s.Resolve(context.Background(), "g1", "live", model.MetricDescriptor{
		EventID:           "level_finished",
		TargetValueID:     "u-deleted",
		AggregationMethod: constant.AggregationSum,
	})
	require.Error(t, err)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeSchemaNotFound, appErr.ErrorCode)

	// unknown slot on a reserved event
	_, err = s.Resolve(context.Background(), "g1", "live", model.MetricDescriptor{
		EventID:           constant.EventCurrencySink,
		TargetValueID:     "field9",
		AggregationMethod: constant.AggregationSum,
	})
	require.Error(t, err)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeSchemaNotFound, appErr.ErrorCode)
}

func TestResolveCountNeedsNoTarget(t *testing.T) {
	s := newTestMetric(nil)

	resolved, err := s.Resolve(context.Background(), "g1", "live", model.MetricDescriptor{
		EventID:           constant.EventSessionStart,
		AggregationMethod: constant.AggregationCount,
	})
	require.NoError(t, err)
	assert.Equal(t, model.FieldRef{}, resolved.Target)
}

func TestResolveFilters(t *testing.T) {
	s := newTestMetric(nil)

	resolved, err := s.Resolve(context.Background(), "g1", "live", model.MetricDescriptor{
		EventID:           constant.EventOfferPurchased,
		TargetValueID:     "field3",
		AggregationMethod: constant.AggregationSum,
		CategoryFilters: []model.Filter{
			{Field: "platform", Predicate: constant.PredicateIs, Value: "ios"},
			{Field: "country", Predicate: constant.PredicateIsNot, Value: "US"},
		},
		ValueFilters: []model.Filter{
			{Field: constant.FilterFieldOfferID, Predicate: constant.PredicateIs, Value: "starter_pack"},
			{Field: constant.FilterFieldCurrency, Predicate: constant.PredicateIs, Value: "gems"},
		},
	})
	require.NoError(t, err)

	// category filters resolve to session columns and are sorted by field
	require.Len(t, resolved.CategoryFilters, 2)
	assert.Equal(t, "country", resolved.CategoryFilters[0].Field.Name)
	assert.Equal(t, "platform", resolved.CategoryFilters[1].Field.Name)

	// filter values passed through entity lookup
	require.Len(t, resolved.ValueFilters, 2)
	byField := map[string]model.ResolvedFilter{}
	for _, f := range resolved.ValueFilters {
		byField[f.Field.Name] = f
	}
	assert.Equal(t, "offer-node-starter_pack", byField["offer_id"].Value)
	assert.Equal(t, "node-gems", byField["currency_id"].Value)

	// unknown category field is an invalid request, not a schema error
	_, err = s.Resolve(context.Background(), "g1", "live", model.MetricDescriptor{
		EventID:           constant.EventOfferPurchased,
		TargetValueID:     "field3",
		AggregationMethod: constant.AggregationSum,
		CategoryFilters:   []model.Filter{{Field: "zodiac", Predicate: constant.PredicateIs, Value: "rat"}},
	})
	var appErr *apperr.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeInvalidRequest, appErr.ErrorCode)
}

func TestResolveFiltersDeterministicOrder(t *testing.T) {
	s := newTestMetric(nil)

	descriptor := model.MetricDescriptor{
		EventID:           constant.EventOfferPurchased,
		TargetValueID:     "field3",
		AggregationMethod: constant.AggregationSum,
		ValueFilters: []model.Filter{
			{Field: constant.FilterFieldCurrency, Predicate: constant.PredicateIs, Value: "gems"},
			{Field: constant.FilterFieldOfferID, Predicate: constant.PredicateIs, Value: "starter_pack"},
			{Field: "amount", Predicate: constant.PredicateIsNot, Value: "0"},
		},
	}

	a, err := s.Resolve(context.Background(), "g1", "live", descriptor)
	require.NoError(t, err)
	b, err := s.Resolve(context.Background(), "g1", "live", descriptor)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
