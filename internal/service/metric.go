package service

import (
	"context"
	"sort"

	linq "github.com/ahmetb/go-linq/v3"
	"github.com/pkg/errors"

	"github.com/liveops-hq/backend/internal/constant"
	"github.com/liveops-hq/backend/internal/model"
	"github.com/liveops-hq/backend/internal/pkg/apperr"
	"github.com/liveops-hq/backend/internal/pkg/async"
	"github.com/liveops-hq/backend/internal/repo"
)

// SchemaSource supplies design event schemas; a missing event surfaces as
// apperr.ErrNotFound.
type SchemaSource interface {
	GetEventSchema(ctx context.Context, gameID, branch, eventID string) (*model.EventSchema, error)
}

// EntitySource maps studio-facing identifiers in filter values to the ids
// the event store carries.
type EntitySource interface {
	OfferCodeNameToOfferID(ctx context.Context, gameID, branch, codeName string) (string, error)
	EntityIDToNodeID(ctx context.Context, gameID, branch, entityID string) (string, error)
}

// Metric resolves an opaque metric descriptor into concrete field references
// against the event schema catalog.
type Metric struct {
	schemas  SchemaSource
	entities EntitySource
}

func NewMetric(eventSchemaRepo *repo.EventSchema, entityRepo *repo.Entity) *Metric {
	return newMetric(eventSchemaRepo, entityRepo)
}

func newMetric(schemas SchemaSource, entities EntitySource) *Metric {
	return &Metric{schemas: schemas, entities: entities}
}

// Resolve turns a metric descriptor into a ResolvedMetric whose identifiers
// are whitelisted and whose filter values have passed entity lookup. A metric
// referring to an event or value slot that no longer exists in the schema
// catalog fails with apperr.ErrSchemaNotFound, distinctly from execution
// errors, since it signals stale client-side configuration.
func (s *Metric) Resolve(ctx context.Context, gameID, branch string, d model.MetricDescriptor) (*model.ResolvedMetric, error) {
	reservedFields, reserved := constant.ReservedEventFields[d.EventID]

	var schema *model.EventSchema
	if !reserved {
		var err error
		schema, err = s.schemas.GetEventSchema(ctx, gameID, branch, d.EventID)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrSchemaNotFound.Msg("event %s no longer exists in the schema catalog", d.EventID)
		} else if err != nil {
			return nil, err
		}
	}

	resolved := &model.ResolvedMetric{
		EventID:           d.EventID,
		AggregationMethod: d.AggregationMethod,
		Percentile:        d.Percentile,
	}

	if d.AggregationMethod != constant.AggregationCount {
		target, err := resolveField(d.EventID, reservedFields, schema, d.TargetValueID)
		if err != nil {
			return nil, err
		}
		resolved.Target = target
	}

	categoryFilters, err := resolveCategoryFilters(d.CategoryFilters)
	if err != nil {
		return nil, err
	}
	resolved.CategoryFilters = categoryFilters

	// value filters resolve independently, so fan out
	valueFilters, err := async.Map(d.ValueFilters, 4, func(f model.Filter) (model.ResolvedFilter, error) {
		return s.resolveValueFilter(ctx, gameID, branch, d.EventID, reservedFields, schema, f)
	})
	if err != nil {
		return nil, err
	}
	sortFilters(valueFilters)
	resolved.ValueFilters = valueFilters

	return resolved, nil
}

func (s *Metric) resolveValueFilter(ctx context.Context, gameID, branch, eventID string, reservedFields map[string]string, schema *model.EventSchema, f model.Filter) (model.ResolvedFilter, error) {
	field, err := resolveField(eventID, reservedFields, schema, f.Field)
	if err != nil {
		return model.ResolvedFilter{}, err
	}

	value := f.Value
	switch f.Field {
	case constant.FilterFieldOfferID:
		value, err = s.entities.OfferCodeNameToOfferID(ctx, gameID, branch, f.Value)
	case constant.FilterFieldCurrency, constant.FilterFieldCurrencyID:
		value, err = s.entities.EntityIDToNodeID(ctx, gameID, branch, f.Value)
	}
	if err != nil {
		return model.ResolvedFilter{}, err
	}

	return model.ResolvedFilter{
		Field:     field,
		Predicate: f.Predicate,
		Value:     value,
	}, nil
}

// resolveField maps a value slot name to a field reference. Reserved events
// carry a static slot table; design events resolve through the schema's
// uniqueID lookup, falling back to payload access when the value id is not a
// reserved name.
func resolveField(eventID string, reservedFields map[string]string, schema *model.EventSchema, name string) (model.FieldRef, error) {
	if reservedFields != nil {
		if col, ok := reservedFields[name]; ok {
			return model.FieldRef{Kind: model.FieldColumn, Name: col}, nil
		}
		if col, ok := constant.FilterFieldColumns[name]; ok {
			return model.FieldRef{Kind: model.FieldColumn, Name: col}, nil
		}
		return model.FieldRef{}, apperr.ErrSchemaNotFound.Msg("value %s does not exist on reserved event %s", name, eventID)
	}

	if col, ok := constant.FilterFieldColumns[name]; ok {
		return model.FieldRef{Kind: model.FieldColumn, Name: col}, nil
	}
	if schema == nil {
		return model.FieldRef{}, apperr.ErrSchemaNotFound.Msg("no schema available to resolve value %s", name)
	}

	match, found := linq.From(schema.Values).FirstWith(func(i interface{}) bool {
		return i.(model.SchemaValue).UniqueID == name
	}).(model.SchemaValue)
	if !found {
		return model.FieldRef{}, apperr.ErrSchemaNotFound.Msg("value %s no longer exists in the schema of event %s", name, schema.EventID)
	}

	if col, ok := constant.FilterFieldColumns[match.ValueID]; ok {
		return model.FieldRef{Kind: model.FieldColumn, Name: col}, nil
	}
	return model.FieldRef{Kind: model.FieldPayload, Name: match.ValueID}, nil
}

func resolveCategoryFilters(filters []model.Filter) ([]model.ResolvedFilter, error) {
	resolved := make([]model.ResolvedFilter, 0, len(filters))
	for _, f := range filters {
		col, ok := constant.SessionCategoryFields[f.Field]
		if !ok {
			return nil, apperr.ErrInvalidReq.Msg("unknown category field: %s", f.Field)
		}
		resolved = append(resolved, model.ResolvedFilter{
			Field:     model.FieldRef{Kind: model.FieldColumn, Name: col},
			Predicate: f.Predicate,
			Value:     f.Value,
		})
	}
	sortFilters(resolved)
	return resolved, nil
}

// sortFilters orders filters deterministically so the same descriptor always
// synthesizes byte-identical query text.
func sortFilters(filters []model.ResolvedFilter) {
	sort.Slice(filters, func(i, j int) bool {
		a, b := filters[i], filters[j]
		if a.Field.Name != b.Field.Name {
			return a.Field.Name < b.Field.Name
		}
		if a.Predicate != b.Predicate {
			return a.Predicate < b.Predicate
		}
		return a.Value < b.Value
	})
}
