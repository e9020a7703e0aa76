package request

import "encoding/json"

// PlayerRequest describes one seat in a new game
type PlayerRequest struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Tokens int    `json:"tokens"`
}

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	Players []PlayerRequest `json:"players"`
}

// ApplyTurnRequest is the request body for submitting a turn. The turn is
// passed to the rules engine as-is.
type ApplyTurnRequest struct {
	Turn json.RawMessage `json:"turn"`
}
