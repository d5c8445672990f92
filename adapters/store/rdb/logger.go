package rdb

import (
	"context"
	"errors"
	"time"

	"github.com/kompox/webstack/internal/logging"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormLogger sends gorm diagnostics to the context logger. Statements are
// traced at DEBUG; not-found lookups are expected and never logged as errors.
type gormLogger struct{}

var _ gormlogger.Interface = gormLogger{}

func (l gormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return l }

func (gormLogger) Info(ctx context.Context, msg string, args ...any) {
	logging.FromContext(ctx).Debugf(ctx, "gorm: "+msg, args...)
}

func (gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	logging.FromContext(ctx).Warnf(ctx, "gorm: "+msg, args...)
}

func (gormLogger) Error(ctx context.Context, msg string, args ...any) {
	logging.FromContext(ctx).Errorf(ctx, "gorm: "+msg, args...)
}

func (gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	logger := logging.FromContext(ctx)
	sql, rows := fc()
	elapsed := time.Since(begin).Round(time.Microsecond)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Warn(ctx, "gorm query failed", "sql", sql, "rows", rows, "elapsed", elapsed, "err", err)
		return
	}
	logger.Debug(ctx, "gorm query", "sql", sql, "rows", rows, "elapsed", elapsed)
}
