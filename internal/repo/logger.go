package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// Logger routes GORM diagnostics to zerolog, through the request-scoped
// logger when the query context carries one. Statements hold confession text,
// so SQL is only logged at debug level.
type Logger struct {
	level gormlogger.LogLevel
	slow  time.Duration
}

// NewLogger returns a Logger reporting failed queries and those slower
// than slow (0 disables the slow query report).
func NewLogger(slow time.Duration) *Logger {
	return &Logger{level: gormlogger.Warn, slow: slow}
}

func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func loggerFor(ctx context.Context) *zerolog.Logger {
	if lg := zerolog.Ctx(ctx); lg.GetLevel() != zerolog.Disabled {
		return lg
	}
	return &log.Logger
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		loggerFor(ctx).Info().Msg(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		loggerFor(ctx).Warn().Msg(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		loggerFor(ctx).Error().Msg(fmt.Sprintf(msg, args...))
	}
}

// Trace reports one finished statement. Not-found lookups are expected and
// stay silent.
func (l *Logger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	lg := loggerFor(ctx)

	var ev *zerolog.Event
	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && l.level >= gormlogger.Error:
		ev = lg.Error().Err(err)
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		ev = lg.Warn().Dur("threshold", l.slow)
	case l.level >= gormlogger.Info:
		ev = lg.Debug()
	default:
		return
	}

	sql, rows := fc()
	ev = ev.Dur("elapsed", elapsed).Int64("rows", rows)
	if lg.GetLevel() <= zerolog.DebugLevel && zerolog.GlobalLevel() <= zerolog.DebugLevel {
		ev = ev.Str("sql", sql)
	}
	ev.Msg("gorm query")
}
