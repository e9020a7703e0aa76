// Package session runs the game session pipeline: it reads a game record,
// asks the rules engine for legal turns or a successor state, and writes the
// result back with a version-guarded conditional write. No game state is kept
// between calls.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cenkalti/backoff/v5"

	"github.com/mcoot/mintworks-go/internal/dependencies/clock"
	"github.com/mcoot/mintworks-go/internal/dependencies/idgen"
	"github.com/mcoot/mintworks-go/internal/engine"
	"github.com/mcoot/mintworks-go/internal/model"
	"github.com/mcoot/mintworks-go/internal/storage"
)

// Service handles game creation, turn listing and turn submission
type Service struct {
	storage storage.Storage
	engine  engine.Engine
	clock   clock.Clock
	ids     idgen.Generator
	cfg     Config
	logger  *slog.Logger
}

// New creates a new session Service
func New(
	storage storage.Storage,
	eng engine.Engine,
	clock clock.Clock,
	ids idgen.Generator,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Service{
		storage: storage,
		engine:  eng,
		clock:   clock,
		ids:     ids,
		cfg:     cfg,
		logger:  logger,
	}
}

// CreateGame initializes a new game for players and stores it at the initial version
func (s *Service) CreateGame(ctx context.Context, players []model.Player) (model.GameID, error) {
	if len(players) == 0 {
		return "", fmt.Errorf("%w: at least one player is required", model.ErrEngineInit)
	}

	setups := make([]engine.PlayerSetup, len(players))
	for i, p := range players {
		if p.Name == "" {
			return "", fmt.Errorf("%w: player %d has no name", model.ErrEngineInit, i+1)
		}
		if p.Age < 0 || p.Tokens < 0 {
			return "", fmt.Errorf("%w: player %s has a negative age or token count", model.ErrEngineInit, p.Name)
		}
		setups[i] = engine.PlayerSetup{
			Name:           p.Name,
			Age:            p.Age,
			Tokens:         p.Tokens,
			DecisionPolicy: s.cfg.DecisionPolicy,
		}
	}

	state, err := s.engine.Initialize(ctx, setups)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrEngineInit, err)
	}
	playerToAct, err := s.engine.PlayerToAct(state)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrEngineInit, err)
	}

	now := s.clock.Now()
	rec := &model.GameRecord{
		ID:          model.GameID(s.ids.NewID()),
		State:       state,
		PlayerToAct: playerToAct,
		Version:     model.InitialVersion,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.storage.InsertGame(ctx, rec); err != nil {
		s.logger.Error("failed to save game",
			slog.String("game_id", string(rec.ID)),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("%w: %w", model.ErrPersistence, err)
	}

	s.logger.Info("game created",
		slog.String("game_id", string(rec.ID)),
		slog.Int("player_count", len(players)),
		slog.String("player_to_act", playerToAct),
	)

	return rec.ID, nil
}

// GetGame returns the stored record for a game
func (s *Service) GetGame(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	return s.load(ctx, id)
}

// GetTurns lists the legal turns for the current state of a game, in engine order.
// It never writes.
func (s *Service) GetTurns(ctx context.Context, id model.GameID) ([]model.Turn, error) {
	rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	turns, err := s.engine.LegalTurns(ctx, rec.State)
	if err != nil {
		return nil, fmt.Errorf("listing turns for game %s: %w", id, engineError(err))
	}
	return turns, nil
}

// ApplyTurn plays turn against the current state of a game. A lost race on
// the conditional write re-runs the whole cycle against the fresh record, up
// to MaxAttempts times.
func (s *Service) ApplyTurn(ctx context.Context, id model.GameID, turn model.Turn) error {
	logger := s.logger.With(slog.String("game_id", string(id)))
	attempts := 0
	conflicted := false

	attempt := func() (*model.GameRecord, error) {
		attempts++

		rec, err := s.load(ctx, id)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		expected := rec.Version

		next, err := s.engine.Apply(ctx, rec.State, turn)
		if err != nil {
			err = engineError(err)
			// a turn legal when submitted but not after losing a race
			if conflicted && errors.Is(err, model.ErrInvalidTurn) {
				err = fmt.Errorf("%w: %w", model.ErrConcurrentModification, err)
			}
			return nil, backoff.Permanent(err)
		}
		playerToAct, err := s.engine.PlayerToAct(next)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("deriving player to act: %w", engineError(err)))
		}

		rec.State = next
		rec.PlayerToAct = playerToAct
		rec.UpdatedAt = s.clock.Now()

		// once issued the write must complete even if the caller goes away
		err = s.storage.UpdateGameIfVersion(context.WithoutCancel(ctx), rec, expected)
		switch {
		case err == nil:
			return rec, nil
		case errors.Is(err, model.ErrVersionConflict):
			conflicted = true
			logger.Debug("version conflict, retrying",
				slog.Int64("expected_version", expected),
				slog.Int("attempt", attempts),
			)
			return nil, err
		case errors.Is(err, model.ErrGameNotFound):
			return nil, backoff.Permanent(err)
		default:
			return nil, backoff.Permanent(fmt.Errorf("%w: %w", model.ErrPersistence, err))
		}
	}

	rec, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(s.newBackOff()),
		backoff.WithMaxTries(uint(s.cfg.MaxAttempts)),
	)
	if err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Unwrap()
		}
		if errors.Is(err, model.ErrVersionConflict) {
			logger.Warn("giving up on turn after repeated conflicts", slog.Int("attempts", attempts))
			return fmt.Errorf("%w: gave up after %d attempts", model.ErrConcurrentModification, attempts)
		}
		return err
	}

	logger.Info("turn applied",
		slog.Int64("version", rec.Version),
		slog.String("player_to_act", rec.PlayerToAct),
		slog.Int("attempts", attempts),
	)
	return nil
}

// ListAwaiting returns the games whose next turn belongs to player
func (s *Service) ListAwaiting(ctx context.Context, player string) ([]model.GameID, error) {
	ids, err := s.storage.ListGamesAwaiting(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrPersistence, err)
	}
	return ids, nil
}

// load reads a record, passing not-found through and classifying anything
// else as a persistence failure
func (s *Service) load(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	rec, err := s.storage.GetGame(ctx, id)
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, model.ErrGameNotFound):
		return nil, err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %w", model.ErrPersistence, err)
	}
}

func (s *Service) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.InitialInterval
	b.MaxInterval = s.cfg.MaxInterval
	b.Reset()
	return b
}

// engineError classifies an engine failure. An undecodable state came out of
// the store, so it counts as a persistence failure.
func engineError(err error) error {
	switch {
	case errors.Is(err, engine.ErrIllegalTurn), errors.Is(err, engine.ErrMalformedTurn):
		return fmt.Errorf("%w: %w", model.ErrInvalidTurn, err)
	case errors.Is(err, engine.ErrCorruptState):
		return fmt.Errorf("%w: %w", model.ErrPersistence, err)
	default:
		return err
	}
}
