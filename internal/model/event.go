package model

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"
)

// Event is one normalized event record in the store. Reserved slots live in
// dedicated columns; everything a design event carries beyond them sits in
// Payload.
type Event struct {
	bun.BaseModel `bun:"events,alias:ev"`

	ID         string          `bun:"id,pk" json:"id"`
	GameID     string          `bun:"game_id" json:"gameId"`
	Branch     string          `bun:"branch" json:"branch"`
	EventID    string          `bun:"event_id" json:"eventId"`
	ClientID   string          `bun:"client_id" json:"clientId"`
	SessionID  string          `bun:"session_id" json:"sessionId"`
	ReceivedAt time.Time       `bun:"received_at" json:"receivedAt"`
	OfferID    null.String     `bun:"offer_id" json:"offerId,omitempty"`
	CurrencyID null.String     `bun:"currency_id" json:"currencyId,omitempty"`
	Amount     null.Float      `bun:"amount" json:"amount,omitempty"`
	Payload    json.RawMessage `bun:"payload,type:jsonb" json:"payload,omitempty"`
}

// Session scopes events to a play session and carries the category fields
// category filters compare against.
type Session struct {
	bun.BaseModel `bun:"sessions,alias:ss"`

	GameID        string    `bun:"game_id" json:"gameId"`
	Branch        string    `bun:"branch" json:"branch"`
	ClientID      string    `bun:"client_id" json:"clientId"`
	SessionID     string    `bun:"session_id,pk" json:"sessionId"`
	StartedAt     time.Time `bun:"started_at" json:"startedAt"`
	Country       string    `bun:"country" json:"country"`
	Platform      string    `bun:"platform" json:"platform"`
	Device        string    `bun:"device" json:"device"`
	AppVersion    string    `bun:"app_version" json:"appVersion"`
	EngineVersion string    `bun:"engine_version" json:"engineVersion"`
}
