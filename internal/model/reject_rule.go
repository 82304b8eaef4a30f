package model

import "github.com/uptrace/bun"

// RejectRule quarantines ingested events whose attributes match Expr. Expr is
// an expression over the incoming record's wire fields,
// e.g. `eventId == "crash" && branch != "live"`.
type RejectRule struct {
	bun.BaseModel `bun:"reject_rules,alias:rr"`

	RuleID int    `bun:"rule_id,pk,autoincrement" json:"id"`
	GameID string `bun:"game_id" json:"gameId"`
	Expr   string `bun:"expr" json:"expr"`
	Active bool   `bun:"active" json:"active"`
}
