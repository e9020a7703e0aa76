// Package mintworks implements a compact version of the Mint Works rules as
// an engine.Engine. Every operation decodes a fresh copy of the state, so
// inputs are never mutated and identical inputs give byte-identical outputs.
package mintworks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcoot/mintworks-go/internal/dependencies/random"
	"github.com/mcoot/mintworks-go/internal/engine"
)

// Engine is the Mint Works rules engine
type Engine struct {
	deciders engine.Deciders
	random   random.Random
}

// New creates an Engine. rnd is only used to shuffle the deck at Initialize.
func New(deciders engine.Deciders, rnd random.Random) *Engine {
	return &Engine{
		deciders: deciders,
		random:   rnd,
	}
}

// Ensure Engine implements the engine interface
var _ engine.Engine = (*Engine)(nil)

// Initialize seats the players, shuffles the deck and deals the supply
func (e *Engine) Initialize(ctx context.Context, players []engine.PlayerSetup) (json.RawMessage, error) {
	if err := e.validatePlayers(players); err != nil {
		return nil, err
	}

	deck := newDeck()
	e.random.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	s := &State{
		Round:              1,
		Locations:          newLocationStates(),
		Supply:             append([]Plan(nil), deck[:SupplySize]...),
		Deck:               append([]Plan(nil), deck[SupplySize:]...),
		NextStartingPlayer: -1,
	}

	youngest := 0
	for i, p := range players {
		s.Players = append(s.Players, PlayerState{
			Name:           p.Name,
			Age:            p.Age,
			Mints:          p.Tokens,
			Hand:           []Plan{},
			Buildings:      []Plan{},
			DecisionPolicy: p.DecisionPolicy,
		})
		if p.Age < players[youngest].Age {
			youngest = i
		}
	}
	s.StartingPlayer = youngest
	s.ToAct = youngest

	return encodeState(s)
}

func (e *Engine) validatePlayers(players []engine.PlayerSetup) error {
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return fmt.Errorf("%w: need %d to %d players, got %d", engine.ErrInvalidPlayers, MinPlayers, MaxPlayers, len(players))
	}
	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if p.Name == "" {
			return fmt.Errorf("%w: player name is required", engine.ErrInvalidPlayers)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate player name %q", engine.ErrInvalidPlayers, p.Name)
		}
		seen[p.Name] = true
		if p.Age < 0 || p.Tokens < 0 {
			return fmt.Errorf("%w: age and tokens must not be negative", engine.ErrInvalidPlayers)
		}
		if _, err := e.deciders.Lookup(p.DecisionPolicy); err != nil {
			return fmt.Errorf("%w: %w", engine.ErrInvalidPlayers, err)
		}
	}
	return nil
}

// LegalTurns lists the legal turns for the player to act; empty once the game is over
func (e *Engine) LegalTurns(ctx context.Context, state json.RawMessage) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := decodeState(state)
	if err != nil {
		return nil, err
	}
	return encodeTurns(legalTurns(s))
}

// PlayerToAct returns the name of the player to act, or "" when the game is over
func (e *Engine) PlayerToAct(state json.RawMessage) (string, error) {
	s, err := decodeState(state)
	if err != nil {
		return "", err
	}
	if s.Over {
		return "", nil
	}
	return s.current().Name, nil
}

// Apply plays turn against state and returns the successor state
func (e *Engine) Apply(ctx context.Context, state json.RawMessage, turn json.RawMessage) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := decodeState(state)
	if err != nil {
		return nil, err
	}
	t, err := decodeTurn(turn)
	if err != nil {
		return nil, err
	}

	if s.Over {
		return nil, fmt.Errorf("%w: the game is over", engine.ErrIllegalTurn)
	}
	if p := s.current(); t.Player != p.Name {
		return nil, fmt.Errorf("%w: it is %s's turn, not %s's", engine.ErrIllegalTurn, p.Name, t.Player)
	}
	if !contains(legalTurns(s), t) {
		return nil, fmt.Errorf("%w: %s is not available", engine.ErrIllegalTurn, describe(t))
	}

	if t.Action == ActionPass {
		s.current().Passed = true
	} else if err := e.place(ctx, s, t); err != nil {
		return nil, err
	}

	if err := e.advance(ctx, s); err != nil {
		return nil, err
	}
	return encodeState(s)
}

// place pays for and resolves a placement. The turn is already known to be legal.
func (e *Engine) place(ctx context.Context, s *State, t Turn) error {
	p := s.current()
	loc := s.location(t.Location)
	def, _ := lookupLocation(t.Location)

	loc.Occupants = append(loc.Occupants, p.Name)
	p.Mints -= def.cost

	if t.Location != LocationTempAgency {
		return resolve(s, t)
	}

	options := tempAgencyOptions(s, p.Mints)
	encoded, err := encodeTurns(options)
	if err != nil {
		return err
	}
	decider, err := e.deciders.Lookup(p.DecisionPolicy)
	if err != nil {
		return fmt.Errorf("%w: %w", engine.ErrCorruptState, err)
	}
	idx, err := decider.ChooseTurn(ctx, p.Name, encoded)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(options) {
		return fmt.Errorf("decision provider chose option %d of %d", idx, len(options))
	}
	return resolve(s, options[idx])
}

// resolve applies the effect of a location for the player to act. Placement
// fees are already paid; the Supplier additionally charges the plan price.
func resolve(s *State, t Turn) error {
	p := s.current()
	switch t.Location {
	case LocationProducer:
		p.Mints += producerIncome
	case LocationLeadershipCouncil:
		p.Mints += councilIncome
		s.NextStartingPlayer = s.ToAct
	case LocationSupplier:
		idx := indexOf(s.Supply, t.Plan)
		if idx < 0 {
			return fmt.Errorf("%w: plan %q is not in the supply", engine.ErrIllegalTurn, t.Plan)
		}
		plan := s.Supply[idx]
		p.Mints -= plan.Cost
		s.Supply = append(s.Supply[:idx], s.Supply[idx+1:]...)
		p.Hand = append(p.Hand, plan)
	case LocationBuilder:
		idx := indexOf(p.Hand, t.Plan)
		if idx < 0 {
			return fmt.Errorf("%w: plan %q is not in hand", engine.ErrIllegalTurn, t.Plan)
		}
		plan := p.Hand[idx]
		p.Hand = append(p.Hand[:idx], p.Hand[idx+1:]...)
		p.Buildings = append(p.Buildings, plan)
	default:
		return fmt.Errorf("%w: unknown location %q", engine.ErrIllegalTurn, t.Location)
	}
	if p.Mints < 0 {
		return fmt.Errorf("%w: %s cannot afford %s", engine.ErrIllegalTurn, p.Name, describe(t))
	}
	return nil
}

// advance hands the turn to the next player who has not passed, or runs
// upkeep once everyone has
func (e *Engine) advance(ctx context.Context, s *State) error {
	n := len(s.Players)
	for step := 1; step <= n; step++ {
		next := (s.ToAct + step) % n
		if !s.Players[next].Passed {
			s.ToAct = next
			return nil
		}
	}
	return e.upkeep(ctx, s)
}

// upkeep ends the round: it either finishes the game or refills the supply,
// pays income and opens the next round
func (e *Engine) upkeep(ctx context.Context, s *State) error {
	for len(s.Supply) < SupplySize && len(s.Deck) > 0 {
		s.Supply = append(s.Supply, s.Deck[0])
		s.Deck = s.Deck[1:]
	}

	if s.someoneWon() || len(s.Supply) < SupplySize {
		winner, err := e.pickWinner(ctx, s)
		if err != nil {
			return err
		}
		s.Over = true
		s.Winner = winner
		s.ToAct = -1
		return nil
	}

	for i := range s.Players {
		p := &s.Players[i]
		p.Mints += UpkeepIncome
		for _, b := range p.Buildings {
			p.Mints += b.Income
		}
		p.Passed = false
	}
	s.Locations = newLocationStates()
	if s.NextStartingPlayer >= 0 {
		s.StartingPlayer = s.NextStartingPlayer
		s.NextStartingPlayer = -1
	}
	s.ToAct = s.StartingPlayer
	s.Round++
	return nil
}

func (s *State) someoneWon() bool {
	for i := range s.Players {
		if s.Players[i].Stars() >= StarsToWin {
			return true
		}
	}
	return false
}

// pickWinner ranks by most stars, then fewest plans owned, then most mints,
// then oldest. A tie that survives all of that is put to the starting
// player's decision provider.
func (e *Engine) pickWinner(ctx context.Context, s *State) (string, error) {
	compare := func(a, b *PlayerState) int {
		switch {
		case a.Stars() != b.Stars():
			return cmpInt(a.Stars(), b.Stars())
		case len(a.Buildings)+len(a.Hand) != len(b.Buildings)+len(b.Hand):
			return cmpInt(len(b.Buildings)+len(b.Hand), len(a.Buildings)+len(a.Hand))
		case a.Mints != b.Mints:
			return cmpInt(a.Mints, b.Mints)
		default:
			return cmpInt(a.Age, b.Age)
		}
	}

	var tied []string
	best := -1
	for i := range s.Players {
		if best < 0 {
			best, tied = i, []string{s.Players[i].Name}
			continue
		}
		switch c := compare(&s.Players[i], &s.Players[best]); {
		case c > 0:
			best, tied = i, []string{s.Players[i].Name}
		case c == 0:
			tied = append(tied, s.Players[i].Name)
		}
	}
	if len(tied) == 1 {
		return tied[0], nil
	}

	chooser := s.Players[s.StartingPlayer]
	decider, err := e.deciders.Lookup(chooser.DecisionPolicy)
	if err != nil {
		return "", fmt.Errorf("%w: %w", engine.ErrCorruptState, err)
	}
	idx, err := decider.ChoosePlayer(ctx, chooser.Name, tied)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(tied) {
		return "", fmt.Errorf("decision provider chose player %d of %d", idx, len(tied))
	}
	return tied[idx], nil
}

func cmpInt(a, b int) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

func indexOf(plans []Plan, name string) int {
	for i, p := range plans {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func describe(t Turn) string {
	switch {
	case t.Action == ActionPass:
		return "pass"
	case t.Plan != "":
		return fmt.Sprintf("%s %s (%s)", t.Action, t.Location, t.Plan)
	default:
		return fmt.Sprintf("%s %s", t.Action, t.Location)
	}
}
