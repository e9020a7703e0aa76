package model

import (
	"encoding/json"
	"time"
)

// GameID uniquely identifies a game
type GameID string

// Turn is an engine-defined move, passed through the service uninterpreted
type Turn = json.RawMessage

// GameRecord is the durable unit of state for a single game
type GameRecord struct {
	ID GameID

	// State is produced and consumed only by the rules engine
	State json.RawMessage

	// PlayerToAct is derived from State and duplicated here so stores can
	// index games by the player they are waiting on. Empty once the game is over.
	PlayerToAct string

	// Version is the concurrency token; it increases by exactly 1 per accepted write
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InitialVersion is the version assigned to a freshly inserted record
const InitialVersion int64 = 1

// IsTerminal returns true if the engine reported no player left to act
func (r *GameRecord) IsTerminal() bool {
	return r.PlayerToAct == ""
}

// Clone returns a deep copy of the record
func (r *GameRecord) Clone() *GameRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.State != nil {
		c.State = append(json.RawMessage(nil), r.State...)
	}
	return &c
}
