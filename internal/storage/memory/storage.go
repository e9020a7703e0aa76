package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/mintworks-go/internal/model"
	"github.com/mcoot/mintworks-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share stored bytes.
type Storage struct {
	mu sync.RWMutex

	games    map[model.GameID]*model.GameRecord
	awaiting map[string]map[model.GameID]struct{}
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games:    make(map[model.GameID]*model.GameRecord),
		awaiting: make(map[string]map[model.GameID]struct{}),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) InsertGame(ctx context.Context, rec *model.GameRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[rec.ID]; ok {
		return model.ErrGameExists
	}
	stored := rec.Clone()
	stored.Version = model.InitialVersion
	s.games[rec.ID] = stored
	s.index(stored.PlayerToAct, rec.ID)

	rec.Version = stored.Version
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return rec.Clone(), nil
}

func (s *Storage) UpdateGameIfVersion(ctx context.Context, rec *model.GameRecord, expected int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.games[rec.ID]
	if !ok {
		return model.ErrGameNotFound
	}
	if current.Version != expected {
		return model.ErrVersionConflict
	}

	s.unindex(current.PlayerToAct, rec.ID)
	stored := rec.Clone()
	stored.CreatedAt = current.CreatedAt
	stored.Version = expected + 1
	s.games[rec.ID] = stored
	s.index(stored.PlayerToAct, rec.ID)

	rec.Version = stored.Version
	return nil
}

func (s *Storage) ListGamesAwaiting(ctx context.Context, player string) ([]model.GameID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]model.GameID, 0, len(s.awaiting[player]))
	for id := range s.awaiting[player] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// index and unindex must be called with the write lock held

func (s *Storage) index(player string, id model.GameID) {
	if player == "" {
		return
	}
	if s.awaiting[player] == nil {
		s.awaiting[player] = make(map[model.GameID]struct{})
	}
	s.awaiting[player][id] = struct{}{}
}

func (s *Storage) unindex(player string, id model.GameID) {
	delete(s.awaiting[player], id)
	if len(s.awaiting[player]) == 0 {
		delete(s.awaiting, player)
	}
}
