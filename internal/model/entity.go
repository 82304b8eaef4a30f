package model

import "github.com/uptrace/bun"

// Offer maps a studio-facing offer code name to the store's internal offer id.
type Offer struct {
	bun.BaseModel `bun:"offers,alias:of"`

	GameID   string `bun:"game_id" json:"gameId"`
	Branch   string `bun:"branch" json:"branch"`
	CodeName string `bun:"code_name" json:"codeName"`
	OfferID  string `bun:"offer_id" json:"offerId"`
}

// EntityNode maps a content-tree entity id to the node id events reference.
type EntityNode struct {
	bun.BaseModel `bun:"entity_nodes,alias:en"`

	GameID   string `bun:"game_id" json:"gameId"`
	Branch   string `bun:"branch" json:"branch"`
	EntityID string `bun:"entity_id" json:"entityId"`
	NodeID   string `bun:"node_id" json:"nodeId"`
}
