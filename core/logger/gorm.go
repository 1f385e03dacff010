package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger adapts a zap logger to gorm's logger interface.
type GormLogger struct {
	zap                       *zap.Logger
	level                     gormlogger.LogLevel
	slowThreshold             time.Duration
	ignoreRecordNotFoundError bool
}

// GormOption configures a GormLogger.
type GormOption func(*GormLogger)

// WithSlowThreshold sets the duration above which queries are logged as slow.
func WithSlowThreshold(d time.Duration) GormOption {
	return func(l *GormLogger) {
		l.slowThreshold = d
	}
}

// WithGormLevel sets the gorm log level.
func WithGormLevel(level gormlogger.LogLevel) GormOption {
	return func(l *GormLogger) {
		l.level = level
	}
}

// WithIgnoreRecordNotFoundError suppresses ErrRecordNotFound in trace output.
func WithIgnoreRecordNotFoundError(ignore bool) GormOption {
	return func(l *GormLogger) {
		l.ignoreRecordNotFoundError = ignore
	}
}

// NewGormLogger creates a gorm logger writing to a named child of l.
func NewGormLogger(l *zap.Logger, opts ...GormOption) *GormLogger {
	gl := &GormLogger{
		zap:                       l.Named("gorm"),
		level:                     gormlogger.Warn,
		slowThreshold:             200 * time.Millisecond,
		ignoreRecordNotFoundError: true,
	}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

// LogMode implements gormlogger.Interface.
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface.
func (l *GormLogger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.zap.Sugar().Infof(msg, args...)
	}
}

// Warn implements gormlogger.Interface.
func (l *GormLogger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.zap.Sugar().Warnf(msg, args...)
	}
}

// Error implements gormlogger.Interface.
func (l *GormLogger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.zap.Sugar().Errorf(msg, args...)
	}
}

// Trace implements gormlogger.Interface.
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}

	switch {
	case err != nil && l.level >= gormlogger.Error &&
		!(l.ignoreRecordNotFoundError && errors.Is(err, gormlogger.ErrRecordNotFound)):
		l.zap.Error("query failed", append(fields, zap.Error(err))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		l.zap.Warn(fmt.Sprintf("slow query over %s", l.slowThreshold), fields...)
	case l.level >= gormlogger.Info:
		l.zap.Debug("query", fields...)
	}
}
