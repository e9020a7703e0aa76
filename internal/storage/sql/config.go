package sql

import "time"

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config holds SQL connection settings
type Config struct {
	Driver string
	DSN    string

	// Pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns a local sqlite database file
func DefaultConfig() Config {
	return Config{
		Driver:          DriverSQLite,
		DSN:             "mwgame.db",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
	}
}
