package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mcoot/mintworks-go/internal/dependencies/random"
)

// Decision policy names
const (
	PolicyFirstChoice  = "first"
	PolicyRandomChoice = "random"
)

// DecisionProvider resolves choices the engine has to put to a participant
// in the middle of applying a turn
type DecisionProvider interface {
	// ChooseTurn picks one of the offered turns and returns its index
	ChooseTurn(ctx context.Context, player string, options []json.RawMessage) (int, error)

	// ChoosePlayer picks one of the candidate players and returns its index
	ChoosePlayer(ctx context.Context, player string, candidates []string) (int, error)
}

// FirstChoice always resolves to the first offered option.
// It stands in for real interactive input.
type FirstChoice struct{}

func (FirstChoice) ChooseTurn(_ context.Context, _ string, options []json.RawMessage) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("no turns to choose from")
	}
	return 0, nil
}

func (FirstChoice) ChoosePlayer(_ context.Context, _ string, candidates []string) (int, error) {
	if len(candidates) == 0 {
		return 0, fmt.Errorf("no players to choose from")
	}
	return 0, nil
}

// RandomChoice picks uniformly at random. Not deterministic, so it suits
// bots driving the API rather than providers resolved inside persisted games.
type RandomChoice struct {
	random random.Random
}

// NewRandomChoice creates a RandomChoice backed by rnd
func NewRandomChoice(rnd random.Random) *RandomChoice {
	return &RandomChoice{random: rnd}
}

func (r *RandomChoice) ChooseTurn(_ context.Context, _ string, options []json.RawMessage) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("no turns to choose from")
	}
	return r.random.Intn(len(options)), nil
}

func (r *RandomChoice) ChoosePlayer(_ context.Context, _ string, candidates []string) (int, error) {
	if len(candidates) == 0 {
		return 0, fmt.Errorf("no players to choose from")
	}
	return r.random.Intn(len(candidates)), nil
}

// Deciders maps decision policy names to providers
type Deciders map[string]DecisionProvider

// DefaultDeciders returns a registry holding only the first-choice provider
func DefaultDeciders() Deciders {
	return Deciders{PolicyFirstChoice: FirstChoice{}}
}

// Lookup returns the provider registered under policy
func (d Deciders) Lookup(policy string) (DecisionProvider, error) {
	p, ok := d[policy]
	if !ok {
		return nil, fmt.Errorf("unknown decision policy %q", policy)
	}
	return p, nil
}
