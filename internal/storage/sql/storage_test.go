package sql

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/mintworks-go/internal/model"
	"github.com/mcoot/mintworks-go/internal/storage/storagetest"
	"github.com/mcoot/mintworks-go/internal/testutil"
)

type StorageSuite struct {
	storagetest.Suite
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	cfg := DefaultConfig()
	cfg.DSN = ":memory:"
	// a single connection keeps the in-memory database alive and shared
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1
	cfg.ConnMaxLifetime = 0

	store, err := Open(cfg, testutil.NopLogger())
	s.Require().NoError(err)

	s.storage = store
	s.Storage = store
	s.Ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
}

func (s *StorageSuite) TestUpdateKeepsCreatedAt() {
	rec := storagetest.NewRecord("game-1", "A")
	s.Require().NoError(s.storage.InsertGame(s.Ctx, rec))
	created := rec.CreatedAt

	rec.CreatedAt = created.Add(time.Hour)
	rec.UpdatedAt = created.Add(2 * time.Hour)
	s.Require().NoError(s.storage.UpdateGameIfVersion(s.Ctx, rec, model.InitialVersion))

	got, err := s.storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.True(created.Equal(got.CreatedAt))
	s.True(created.Add(2 * time.Hour).Equal(got.UpdatedAt))
}

func (s *StorageSuite) TestFinishedGamesAwaitNobody() {
	s.Require().NoError(s.storage.InsertGame(s.Ctx, storagetest.NewRecord("game-1", "")))

	ids, err := s.storage.ListGamesAwaiting(s.Ctx, "")
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *StorageSuite) TestMigrateIsIdempotent() {
	s.Require().NoError(s.storage.Migrate(s.Ctx))
	s.Require().NoError(s.storage.Migrate(s.Ctx))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Driver = "oracle"

	_, err := Open(cfg, testutil.NopLogger())
	require.ErrorContains(t, err, "unsupported database driver")
}
