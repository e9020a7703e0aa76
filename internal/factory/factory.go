package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/mintworks-go/internal/config"
	"github.com/mcoot/mintworks-go/internal/dependencies/clock"
	"github.com/mcoot/mintworks-go/internal/dependencies/idgen"
	"github.com/mcoot/mintworks-go/internal/dependencies/random"
	"github.com/mcoot/mintworks-go/internal/engine"
	"github.com/mcoot/mintworks-go/internal/engine/mintworks"
	"github.com/mcoot/mintworks-go/internal/services/session"
	"github.com/mcoot/mintworks-go/internal/storage"
	"github.com/mcoot/mintworks-go/internal/storage/memory"
	redisstorage "github.com/mcoot/mintworks-go/internal/storage/redis"
	sqlstorage "github.com/mcoot/mintworks-go/internal/storage/sql"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageMemory
	StorageTypeRedis    = config.StorageRedis
	StorageTypeSQLite   = config.StorageSQLite
	StorageTypePostgres = config.StoragePostgres
	StorageTypeMySQL    = config.StorageMySQL
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	IDs    idgen.Generator

	// Rules
	Deciders engine.Deciders
	Engine   engine.Engine

	// Services
	Sessions *session.Service

	closers []io.Closer
}

// Close releases storage connections
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLConfig holds database settings (required for sqlite, postgres and mysql)
	SQLConfig *sqlstorage.Config
	// SessionConfig tunes the turn pipeline
	// If zero value, defaults to session.DefaultConfig()
	SessionConfig session.Config
}

// ConfigFromEnv builds a factory Config from the environment configuration
func ConfigFromEnv(c config.Config, logger *slog.Logger) Config {
	cfg := Config{
		Logger:      logger,
		StorageType: c.StorageType,
		SessionConfig: session.Config{
			MaxAttempts:     c.MaxAttempts,
			InitialInterval: c.RetryInitialInterval,
			MaxInterval:     c.RetryMaxInterval,
			DecisionPolicy:  c.DecisionPolicy,
		},
	}

	switch c.StorageType {
	case StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		cfg.RedisConfig = &redisCfg
	case StorageTypeSQLite, StorageTypePostgres, StorageTypeMySQL:
		sqlCfg := sqlstorage.DefaultConfig()
		sqlCfg.Driver = c.StorageType
		if c.DatabaseDSN != "" {
			sqlCfg.DSN = c.DatabaseDSN
		}
		cfg.SQLConfig = &sqlCfg
	}

	return cfg
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var (
		store   storage.Storage
		closers []io.Closer
	)
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closers = append(closers, redisStore)
	case StorageTypeSQLite, StorageTypePostgres, StorageTypeMySQL:
		if cfg.SQLConfig == nil {
			return nil, fmt.Errorf("SQLConfig required when StorageType is %s", storageType)
		}
		sqlStore, err := sqlstorage.Open(*cfg.SQLConfig, logger.With(slog.String("component", "sql")))
		if err != nil {
			return nil, err
		}
		store = sqlStore
		closers = append(closers, sqlStore)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be memory, redis, sqlite, postgres or mysql", storageType)
	}

	// Use default session config if not provided
	sessionCfg := cfg.SessionConfig
	if sessionCfg.MaxAttempts == 0 {
		sessionCfg = session.DefaultConfig()
	}

	// Create external dependencies
	app, err := newWithDependencies(store, clock.New(), random.New(), idgen.New(), sessionCfg, logger)
	if err != nil {
		for _, c := range closers {
			_ = c.Close()
		}
		return nil, err
	}
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	ids idgen.Generator,
	sessionCfg session.Config,
	logger *slog.Logger,
) (*App, error) {
	deciders := engine.DefaultDeciders()
	deciders[engine.PolicyRandomChoice] = engine.NewRandomChoice(rnd)

	if _, err := deciders.Lookup(sessionCfg.DecisionPolicy); err != nil {
		return nil, err
	}

	eng := mintworks.New(deciders, rnd)
	sessions := session.New(store, eng, clk, ids, sessionCfg, logger.With(slog.String("component", "session")))

	return &App{
		Storage:  store,
		Clock:    clk,
		Random:   rnd,
		IDs:      ids,
		Deciders: deciders,
		Engine:   eng,
		Sessions: sessions,
	}, nil
}
