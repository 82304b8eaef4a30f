package model

import "github.com/uptrace/bun"

// EventSchema describes a design event's declared value slots. Studios edit
// these; a slot referenced by a stored metric may no longer exist.
type EventSchema struct {
	bun.BaseModel `bun:"event_schemas,alias:es"`

	GameID  string        `bun:"game_id" json:"gameId"`
	Branch  string        `bun:"branch" json:"branch"`
	EventID string        `bun:"event_id" json:"eventId"`
	Values  []SchemaValue `bun:"values,type:jsonb" json:"values"`
}

// SchemaValue binds a stable unique id to the studio-facing value id.
type SchemaValue struct {
	UniqueID string `json:"uniqueId"`
	ValueID  string `json:"valueId"`
}
