package model

import "github.com/uptrace/bun"

// SegmentMember is one client's membership in a named segment. Experiment
// participation is a segment like any other, named abtest_<testID>.
type SegmentMember struct {
	bun.BaseModel `bun:"segment_members,alias:sm"`

	GameID    string `bun:"game_id" json:"gameId"`
	SegmentID string `bun:"segment_id" json:"segmentId"`
	ClientID  string `bun:"client_id" json:"clientId"`
}
