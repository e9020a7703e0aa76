package mintworks

import (
	"encoding/json"
	"fmt"

	"github.com/mcoot/mintworks-go/internal/engine"
)

// Game constants
const (
	MinPlayers   = 2
	MaxPlayers   = 4
	SupplySize   = 3
	StarsToWin   = 7
	UpkeepIncome = 1
)

// PlayerState is a seat at the table
type PlayerState struct {
	Name           string `json:"name"`
	Age            int    `json:"age"`
	Mints          int    `json:"mints"`
	Hand           []Plan `json:"hand"`
	Buildings      []Plan `json:"buildings"`
	Passed         bool   `json:"passed"`
	DecisionPolicy string `json:"decisionPolicy"`
}

// Stars totals the stars of every building the player owns
func (p *PlayerState) Stars() int {
	total := 0
	for _, b := range p.Buildings {
		total += b.Stars
	}
	return total
}

// LocationState tracks who has placed mints on a location this round
type LocationState struct {
	Name      string   `json:"name"`
	Occupants []string `json:"occupants"`
}

// State is the full serialisable game state
type State struct {
	Round          int             `json:"round"`
	Players        []PlayerState   `json:"players"`
	Locations      []LocationState `json:"locations"`
	Supply         []Plan          `json:"supply"`
	Deck           []Plan          `json:"deck"`
	StartingPlayer int             `json:"startingPlayer"`

	// NextStartingPlayer is set by the Leadership Council, -1 if unclaimed
	NextStartingPlayer int `json:"nextStartingPlayer"`

	// ToAct is the seat index of the player to act, -1 once the game is over
	ToAct  int    `json:"toAct"`
	Over   bool   `json:"over"`
	Winner string `json:"winner,omitempty"`
}

func decodeState(raw json.RawMessage) (*State, error) {
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrCorruptState, err)
	}
	if !s.Over && (s.ToAct < 0 || s.ToAct >= len(s.Players)) {
		return nil, fmt.Errorf("%w: player index %d out of range", engine.ErrCorruptState, s.ToAct)
	}
	return &s, nil
}

func encodeState(s *State) (json.RawMessage, error) {
	return json.Marshal(s)
}

// current returns the player to act
func (s *State) current() *PlayerState {
	return &s.Players[s.ToAct]
}

func (s *State) location(name string) *LocationState {
	for i := range s.Locations {
		if s.Locations[i].Name == name {
			return &s.Locations[i]
		}
	}
	return nil
}
