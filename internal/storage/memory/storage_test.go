package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/mintworks-go/internal/model"
	"github.com/mcoot/mintworks-go/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.Storage = s.storage
	s.Ctx = context.Background()
}

func (s *StorageSuite) TestInsertDoesNotAliasCallerState() {
	rec := storagetest.NewRecord("game-1", "A")
	s.Require().NoError(s.storage.InsertGame(s.Ctx, rec))

	rec.State[0] = 'X'

	got, err := s.storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.True(json.Valid(got.State))
}

func (s *StorageSuite) TestUpdateKeepsCreatedAt() {
	rec := storagetest.NewRecord("game-1", "A")
	s.Require().NoError(s.storage.InsertGame(s.Ctx, rec))
	created := rec.CreatedAt

	rec.CreatedAt = created.Add(48 * time.Hour)
	s.Require().NoError(s.storage.UpdateGameIfVersion(s.Ctx, rec, model.InitialVersion))

	got, err := s.storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.True(created.Equal(got.CreatedAt))
}

func (s *StorageSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.Ctx)
	cancel()

	_, err := s.storage.GetGame(ctx, "game-1")
	s.ErrorIs(err, context.Canceled)
}
