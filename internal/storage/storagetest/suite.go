// Package storagetest holds the behaviour every storage.Storage
// implementation must share. Implementations embed Suite in their own test
// suite and set Storage and Ctx in SetupTest.
package storagetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/mintworks-go/internal/model"
	"github.com/mcoot/mintworks-go/internal/storage"
)

// Suite is the shared storage test suite
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

// NewRecord builds a record ready for insertion
func NewRecord(id model.GameID, playerToAct string) *model.GameRecord {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &model.GameRecord{
		ID:          id,
		State:       json.RawMessage(fmt.Sprintf(`{"toAct":%q}`, playerToAct)),
		PlayerToAct: playerToAct,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *Suite) insert(id model.GameID, playerToAct string) *model.GameRecord {
	rec := NewRecord(id, playerToAct)
	s.Require().NoError(s.Storage.InsertGame(s.Ctx, rec))
	return rec
}

func (s *Suite) TestInsertAndGetGame() {
	rec := s.insert("game-1", "A")
	s.Equal(model.InitialVersion, rec.Version)

	got, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(rec.ID, got.ID)
	s.JSONEq(string(rec.State), string(got.State))
	s.Equal("A", got.PlayerToAct)
	s.Equal(model.InitialVersion, got.Version)
	s.True(rec.CreatedAt.Equal(got.CreatedAt))
}

func (s *Suite) TestInsertDuplicateFails() {
	s.insert("game-1", "A")

	err := s.Storage.InsertGame(s.Ctx, NewRecord("game-1", "B"))
	s.ErrorIs(err, model.ErrGameExists)

	got, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal("A", got.PlayerToAct)
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Storage.GetGame(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestUpdateIfVersionBumpsVersion() {
	rec := s.insert("game-1", "A")

	rec.State = json.RawMessage(`{"toAct":"B"}`)
	rec.PlayerToAct = "B"
	s.Require().NoError(s.Storage.UpdateGameIfVersion(s.Ctx, rec, model.InitialVersion))
	s.Equal(model.InitialVersion+1, rec.Version)

	got, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.InitialVersion+1, got.Version)
	s.Equal("B", got.PlayerToAct)
	s.JSONEq(`{"toAct":"B"}`, string(got.State))
}

func (s *Suite) TestUpdateWithStaleVersionConflicts() {
	rec := s.insert("game-1", "A")
	s.Require().NoError(s.Storage.UpdateGameIfVersion(s.Ctx, rec, model.InitialVersion))

	stale := NewRecord("game-1", "C")
	err := s.Storage.UpdateGameIfVersion(s.Ctx, stale, model.InitialVersion)
	s.ErrorIs(err, model.ErrVersionConflict)

	got, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal("A", got.PlayerToAct)
	s.Equal(model.InitialVersion+1, got.Version)
}

func (s *Suite) TestUpdateMissingGame() {
	err := s.Storage.UpdateGameIfVersion(s.Ctx, NewRecord("nonexistent", "A"), model.InitialVersion)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestReturnedRecordIsACopy() {
	s.insert("game-1", "A")

	got, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	got.State[0] = 'X'
	got.PlayerToAct = "Z"

	again, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.JSONEq(`{"toAct":"A"}`, string(again.State))
	s.Equal("A", again.PlayerToAct)
}

func (s *Suite) TestListGamesAwaiting() {
	s.insert("game-b", "A")
	s.insert("game-a", "A")
	s.insert("game-c", "B")

	ids, err := s.Storage.ListGamesAwaiting(s.Ctx, "A")
	s.Require().NoError(err)
	s.Equal([]model.GameID{"game-a", "game-b"}, ids)

	ids, err = s.Storage.ListGamesAwaiting(s.Ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *Suite) TestListGamesAwaitingFollowsUpdates() {
	rec := s.insert("game-1", "A")
	rec.PlayerToAct = "B"
	s.Require().NoError(s.Storage.UpdateGameIfVersion(s.Ctx, rec, rec.Version))

	ids, err := s.Storage.ListGamesAwaiting(s.Ctx, "A")
	s.Require().NoError(err)
	s.Empty(ids)

	ids, err = s.Storage.ListGamesAwaiting(s.Ctx, "B")
	s.Require().NoError(err)
	s.Equal([]model.GameID{"game-1"}, ids)

	// finished games await nobody
	rec.PlayerToAct = ""
	s.Require().NoError(s.Storage.UpdateGameIfVersion(s.Ctx, rec, rec.Version))

	ids, err = s.Storage.ListGamesAwaiting(s.Ctx, "B")
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *Suite) TestConcurrentUpdatesExactlyOneWins() {
	s.insert("game-1", "A")

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := NewRecord("game-1", fmt.Sprintf("P%d", i))
			err := s.Storage.UpdateGameIfVersion(s.Ctx, rec, model.InitialVersion)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, model.ErrVersionConflict):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	s.Equal(1, wins)
	s.Equal(writers-1, conflicts)

	got, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.InitialVersion+1, got.Version)
}
