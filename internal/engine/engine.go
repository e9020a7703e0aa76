// Package engine defines the boundary between the session service and a
// pluggable rules engine. States and turns cross it as opaque JSON.
package engine

import (
	"context"
	"encoding/json"
	"errors"
)

// Errors returned by engine implementations
var (
	// ErrInvalidPlayers is returned by Initialize for an unusable player set
	ErrInvalidPlayers = errors.New("invalid player set")

	// ErrIllegalTurn is returned by Apply when the turn is not legal in the given state
	ErrIllegalTurn = errors.New("illegal turn")

	// ErrMalformedTurn is returned by Apply when the turn payload cannot be decoded
	ErrMalformedTurn = errors.New("malformed turn")

	// ErrCorruptState is returned when a persisted state cannot be decoded
	ErrCorruptState = errors.New("corrupt game state")
)

// PlayerSetup describes one participant at game creation
type PlayerSetup struct {
	Name   string
	Age    int
	Tokens int

	// DecisionPolicy names the DecisionProvider that resolves in-engine
	// choices for this player. It is stored in the state so that every
	// later request can resolve the same provider again.
	DecisionPolicy string
}

// Engine is a pure, deterministic rules engine
type Engine interface {
	// Initialize builds the initial state for the given players
	Initialize(ctx context.Context, players []PlayerSetup) (json.RawMessage, error)

	// LegalTurns lists the turns available in state, in a stable order
	LegalTurns(ctx context.Context, state json.RawMessage) ([]json.RawMessage, error)

	// Apply validates turn against state and returns the successor state.
	// The input state is never modified.
	Apply(ctx context.Context, state json.RawMessage, turn json.RawMessage) (json.RawMessage, error)

	// PlayerToAct returns the player whose turn is next, or "" if the game is over
	PlayerToAct(state json.RawMessage) (string, error)
}
