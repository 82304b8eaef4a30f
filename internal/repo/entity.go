package repo

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/liveops-hq/backend/internal/model"
	"github.com/liveops-hq/backend/internal/pkg/apperr"
)

type Entity struct {
	db *bun.DB
}

func NewEntity(db *bun.DB) *Entity {
	return &Entity{db: db}
}

// OfferCodeNameToOfferID maps a studio-facing offer code name to the offer id
// stored on event rows.
func (r *Entity) OfferCodeNameToOfferID(ctx context.Context, gameID, branch, codeName string) (string, error) {
	var offer model.Offer
	err := r.db.NewSelect().
		Model(&offer).
		Column("of.offer_id").
		Where("of.game_id = ?", gameID).
		Where("of.branch = ?", branch).
		Where("of.code_name = ?", codeName).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.ErrNotFound
	} else if err != nil {
		return "", errors.Wrap(err, "failed to resolve offer code name")
	}
	return offer.OfferID, nil
}

// EntityIDToNodeID maps a content-tree entity id to the node id events carry.
func (r *Entity) EntityIDToNodeID(ctx context.Context, gameID, branch, entityID string) (string, error) {
	var node model.EntityNode
	err := r.db.NewSelect().
		Model(&node).
		Column("en.node_id").
		Where("en.game_id = ?", gameID).
		Where("en.branch = ?", branch).
		Where("en.entity_id = ?", entityID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.ErrNotFound
	} else if err != nil {
		return "", errors.Wrap(err, "failed to resolve entity node")
	}
	return node.NodeID, nil
}
