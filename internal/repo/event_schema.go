package repo

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/liveops-hq/backend/internal/app/appconfig"
	"github.com/liveops-hq/backend/internal/model"
	modelcache "github.com/liveops-hq/backend/internal/model/cache"
	"github.com/liveops-hq/backend/internal/pkg/apperr"
)

type EventSchema struct {
	db   *bun.DB
	conf *appconfig.Config
}

func NewEventSchema(db *bun.DB, conf *appconfig.Config) *EventSchema {
	return &EventSchema{db: db, conf: conf}
}

// GetEventSchema loads the declared value slots of a design event,
// read-through cached. A missing row means the event no longer exists in the
// studio's schema; misses are not cached since the studio may add the event
// back at any moment.
func (r *EventSchema) GetEventSchema(ctx context.Context, gameID, branch, eventID string) (*model.EventSchema, error) {
	key := gameID + ":" + branch + ":" + eventID
	var schema model.EventSchema
	_, err := modelcache.EventSchemaByKey.MutexGetSet(key, &schema, func() (model.EventSchema, error) {
		s, err := r.getEventSchemaFromDB(ctx, gameID, branch, eventID)
		if err != nil {
			return model.EventSchema{}, err
		}
		return *s, nil
	}, r.conf.SchemaCacheTTL)
	if err != nil {
		return nil, err
	}
	return &schema, nil
}

func (r *EventSchema) getEventSchemaFromDB(ctx context.Context, gameID, branch, eventID string) (*model.EventSchema, error) {
	var schema model.EventSchema
	err := r.db.NewSelect().
		Model(&schema).
		Where("es.game_id = ?", gameID).
		Where("es.branch = ?", branch).
		Where("es.event_id = ?", eventID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "failed to get event schema")
	}
	return &schema, nil
}
