package sql

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mcoot/mintworks-go/internal/model"
	"github.com/mcoot/mintworks-go/internal/storage"
)

// gameRow is the games table. Timestamps come from the service clock,
// not from gorm.
type gameRow struct {
	GameID      string    `gorm:"primaryKey;size:64"`
	State       string    `gorm:"type:text;not null"`
	PlayerToAct string    `gorm:"size:128;index"`
	Version     int64     `gorm:"not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false"`
}

func (gameRow) TableName() string {
	return "games"
}

// Storage is a gorm-backed implementation of the storage interface.
// Conditional writes are a single UPDATE guarded by the expected version.
type Storage struct {
	db *gorm.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Open connects to the configured database and migrates the games table
func Open(cfg Config, logger *slog.Logger) (*Storage, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverMySQL:
		dialector = mysql.Open(cfg.DSN)
	case DriverPostgres, "postgresql":
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite, "sqlite3":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newGormLogger(logger),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	s := NewWithDB(db)
	if err := s.Migrate(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB creates a SQL storage over an existing connection. The games
// table must already exist; see Migrate.
func NewWithDB(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// Migrate creates or updates the games table
func (s *Storage) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&gameRow{}); err != nil {
		return fmt.Errorf("failed to migrate games table: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Storage) InsertGame(ctx context.Context, rec *model.GameRecord) error {
	row := gameRow{
		GameID:      string(rec.ID),
		State:       string(rec.State),
		PlayerToAct: rec.PlayerToAct,
		Version:     model.InitialVersion,
		CreatedAt:   rec.CreatedAt.UTC(),
		UpdatedAt:   rec.UpdatedAt.UTC(),
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrGameExists
	}

	rec.Version = model.InitialVersion
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	var rows []gameRow
	err := s.db.WithContext(ctx).Where("game_id = ?", string(id)).Limit(1).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, model.ErrGameNotFound
	}

	row := rows[0]
	return &model.GameRecord{
		ID:          model.GameID(row.GameID),
		State:       []byte(row.State),
		PlayerToAct: row.PlayerToAct,
		Version:     row.Version,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}, nil
}

func (s *Storage) UpdateGameIfVersion(ctx context.Context, rec *model.GameRecord, expected int64) error {
	res := s.db.WithContext(ctx).
		Model(&gameRow{}).
		Where("game_id = ? AND version = ?", string(rec.ID), expected).
		Updates(map[string]interface{}{
			"state":         string(rec.State),
			"player_to_act": rec.PlayerToAct,
			"version":       expected + 1,
			"updated_at":    rec.UpdatedAt.UTC(),
		})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		var count int64
		err := s.db.WithContext(ctx).Model(&gameRow{}).Where("game_id = ?", string(rec.ID)).Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return model.ErrGameNotFound
		}
		return model.ErrVersionConflict
	}

	rec.Version = expected + 1
	return nil
}

func (s *Storage) ListGamesAwaiting(ctx context.Context, player string) ([]model.GameID, error) {
	if player == "" {
		// finished games have an empty player to act
		return []model.GameID{}, nil
	}

	var ids []string
	err := s.db.WithContext(ctx).
		Model(&gameRow{}).
		Where("player_to_act = ?", player).
		Order("game_id").
		Pluck("game_id", &ids).Error
	if err != nil {
		return nil, err
	}

	out := make([]model.GameID, len(ids))
	for i, id := range ids {
		out[i] = model.GameID(id)
	}
	return out, nil
}
