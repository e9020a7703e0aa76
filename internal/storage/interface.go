package storage

import (
	"context"

	"github.com/mcoot/mintworks-go/internal/model"
)

// Storage defines the interface for game record persistence.
// Records are created once and never deleted.
type Storage interface {
	// InsertGame stores a new record at model.InitialVersion and sets
	// rec.Version to match. It fails with model.ErrGameExists if the ID is taken.
	InsertGame(ctx context.Context, rec *model.GameRecord) error

	// GetGame returns the current record, or model.ErrGameNotFound
	GetGame(ctx context.Context, id model.GameID) (*model.GameRecord, error)

	// UpdateGameIfVersion replaces state and player to act only if the stored
	// version equals expected, and bumps the version to expected+1 in the same
	// write, which is then reflected in rec.Version. A stale expected version
	// gives model.ErrVersionConflict.
	UpdateGameIfVersion(ctx context.Context, rec *model.GameRecord, expected int64) error

	// ListGamesAwaiting returns the IDs of games whose player to act is player,
	// sorted by ID
	ListGamesAwaiting(ctx context.Context, player string) ([]model.GameID, error)
}
