package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/mintworks-go/internal/model"
	"github.com/mcoot/mintworks-go/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Each game is a hash; writes run under WATCH on that hash so a concurrent
// writer aborts the transaction.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) InsertGame(ctx context.Context, rec *model.GameRecord) error {
	key := gameKey(rec.ID)

	txf := func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return model.ErrGameExists
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, map[string]interface{}{
				fieldState:       string(rec.State),
				fieldPlayerToAct: rec.PlayerToAct,
				fieldVersion:     model.InitialVersion,
				fieldCreatedAt:   formatTime(rec.CreatedAt),
				fieldUpdatedAt:   formatTime(rec.UpdatedAt),
			})
			if rec.PlayerToAct != "" {
				pipe.SAdd(ctx, awaitingIndexKey(rec.PlayerToAct), string(rec.ID))
			}
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		// another writer created the key between EXISTS and EXEC
		return model.ErrGameExists
	}
	if err != nil {
		return err
	}

	rec.Version = model.InitialVersion
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	fields, err := s.client.HGetAll(ctx, gameKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrGameNotFound
	}
	return decodeRecord(id, fields)
}

func (s *Storage) UpdateGameIfVersion(ctx context.Context, rec *model.GameRecord, expected int64) error {
	key := gameKey(rec.ID)

	txf := func(tx *redis.Tx) error {
		values, err := tx.HMGet(ctx, key, fieldVersion, fieldPlayerToAct).Result()
		if err != nil {
			return err
		}
		if values[0] == nil {
			return model.ErrGameNotFound
		}
		current, err := parseVersion(values[0])
		if err != nil {
			return err
		}
		if current != expected {
			return model.ErrVersionConflict
		}
		previous, _ := values[1].(string)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, map[string]interface{}{
				fieldState:       string(rec.State),
				fieldPlayerToAct: rec.PlayerToAct,
				fieldVersion:     expected + 1,
				fieldUpdatedAt:   formatTime(rec.UpdatedAt),
			})
			if previous != "" && previous != rec.PlayerToAct {
				pipe.SRem(ctx, awaitingIndexKey(previous), string(rec.ID))
			}
			if rec.PlayerToAct != "" {
				pipe.SAdd(ctx, awaitingIndexKey(rec.PlayerToAct), string(rec.ID))
			}
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrVersionConflict
	}
	if err != nil {
		return err
	}

	rec.Version = expected + 1
	return nil
}

func (s *Storage) ListGamesAwaiting(ctx context.Context, player string) ([]model.GameID, error) {
	members, err := s.client.SMembers(ctx, awaitingIndexKey(player)).Result()
	if err != nil {
		return nil, err
	}

	sort.Strings(members)
	ids := make([]model.GameID, len(members))
	for i, m := range members {
		ids[i] = model.GameID(m)
	}
	return ids, nil
}

func decodeRecord(id model.GameID, fields map[string]string) (*model.GameRecord, error) {
	version, err := strconv.ParseInt(fields[fieldVersion], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("game %s: bad version: %w", id, err)
	}
	createdAt, err := parseTime(fields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("game %s: bad created_at: %w", id, err)
	}
	updatedAt, err := parseTime(fields[fieldUpdatedAt])
	if err != nil {
		return nil, fmt.Errorf("game %s: bad updated_at: %w", id, err)
	}

	return &model.GameRecord{
		ID:          id,
		State:       []byte(fields[fieldState]),
		PlayerToAct: fields[fieldPlayerToAct],
		Version:     version,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func parseVersion(v interface{}) (int64, error) {
	str, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected version type %T", v)
	}
	return strconv.ParseInt(str, 10, 64)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
