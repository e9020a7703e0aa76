package sql

import (
	"fmt"
	"log/slog"
	"time"

	gormlogger "gorm.io/gorm/logger"
)

// slogWriter routes gorm's log output through slog at debug level
type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...interface{}) {
	w.logger.Debug(fmt.Sprintf(format, args...))
}

func newGormLogger(logger *slog.Logger) gormlogger.Interface {
	return gormlogger.New(slogWriter{logger: logger}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
