package session

import (
	"time"

	"github.com/mcoot/mintworks-go/internal/engine"
)

// Config tunes the turn application pipeline
type Config struct {
	// MaxAttempts bounds how many times ApplyTurn runs the read-apply-write
	// cycle before giving up with model.ErrConcurrentModification
	MaxAttempts int

	// Backoff between attempts grows exponentially from InitialInterval up to MaxInterval
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// DecisionPolicy is the decision provider every new player is wired to
	DecisionPolicy string
}

// DefaultConfig returns the default pipeline settings
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     3,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     200 * time.Millisecond,
		DecisionPolicy:  engine.PolicyFirstChoice,
	}
}
