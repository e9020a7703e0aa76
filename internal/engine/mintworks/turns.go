package mintworks

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mcoot/mintworks-go/internal/engine"
)

// Turn actions
const (
	ActionPlace = "place"
	ActionPass  = "pass"
)

// Turn is the wire form of a move
type Turn struct {
	Player   string `json:"player"`
	Action   string `json:"action"`
	Location string `json:"location,omitempty"`
	Plan     string `json:"plan,omitempty"`
}

func decodeTurn(raw json.RawMessage) (Turn, error) {
	var t Turn
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		return Turn{}, fmt.Errorf("%w: %w", engine.ErrMalformedTurn, err)
	}
	if t.Player == "" || t.Action == "" {
		return Turn{}, fmt.Errorf("%w: player and action are required", engine.ErrMalformedTurn)
	}
	return t, nil
}

// legalTurns enumerates the turns open to the player to act, placements in
// location order followed by pass
func legalTurns(s *State) []Turn {
	if s.Over {
		return nil
	}
	p := s.current()
	var turns []Turn

	for _, loc := range locations {
		if !s.hasSpace(loc.name) {
			continue
		}
		switch loc.name {
		case LocationProducer, LocationLeadershipCouncil:
			if p.Mints >= loc.cost {
				turns = append(turns, Turn{Player: p.Name, Action: ActionPlace, Location: loc.name})
			}
		case LocationSupplier:
			for _, plan := range distinct(s.Supply) {
				if p.Mints >= plan.Cost {
					turns = append(turns, Turn{Player: p.Name, Action: ActionPlace, Location: loc.name, Plan: plan.Name})
				}
			}
		case LocationBuilder:
			if p.Mints >= loc.cost {
				for _, plan := range distinct(p.Hand) {
					turns = append(turns, Turn{Player: p.Name, Action: ActionPlace, Location: loc.name, Plan: plan.Name})
				}
			}
		case LocationTempAgency:
			if p.Mints >= loc.cost && len(tempAgencyOptions(s, p.Mints-loc.cost)) > 0 {
				turns = append(turns, Turn{Player: p.Name, Action: ActionPlace, Location: loc.name})
			}
		}
	}

	return append(turns, Turn{Player: p.Name, Action: ActionPass})
}

// tempAgencyOptions lists the effects the Temp Agency can copy: those of
// occupied locations the player can still afford with budget mints
func tempAgencyOptions(s *State, budget int) []Turn {
	p := s.current()
	var options []Turn
	for _, loc := range locations {
		if loc.name == LocationTempAgency || !s.occupied(loc.name) {
			continue
		}
		switch loc.name {
		case LocationProducer, LocationLeadershipCouncil:
			options = append(options, Turn{Player: p.Name, Action: ActionPlace, Location: loc.name})
		case LocationSupplier:
			for _, plan := range distinct(s.Supply) {
				if budget >= plan.Cost {
					options = append(options, Turn{Player: p.Name, Action: ActionPlace, Location: loc.name, Plan: plan.Name})
				}
			}
		case LocationBuilder:
			for _, plan := range distinct(p.Hand) {
				options = append(options, Turn{Player: p.Name, Action: ActionPlace, Location: loc.name, Plan: plan.Name})
			}
		}
	}
	return options
}

func contains(turns []Turn, t Turn) bool {
	for _, candidate := range turns {
		if candidate == t {
			return true
		}
	}
	return false
}

// distinct drops later plans with a name already seen, keeping order
func distinct(plans []Plan) []Plan {
	seen := make(map[string]bool, len(plans))
	out := make([]Plan, 0, len(plans))
	for _, p := range plans {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		out = append(out, p)
	}
	return out
}

func encodeTurns(turns []Turn) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(turns))
	for _, t := range turns {
		b, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
