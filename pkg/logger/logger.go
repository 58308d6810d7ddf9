// Package logger provides logging functionality for the pkgm application.
package logger

import (
	"go.uber.org/zap"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=logger.go -destination=mocklogger.gen.go -package=logger

// Logger interface provides logging capabilities.
type Logger interface {
	// Logf logs a formatted informational message.
	Logf(format string, args ...interface{})
	// Debugf logs a formatted message that is only shown in verbose mode.
	Debugf(format string, args ...interface{})
	// Warnf logs a formatted warning.
	Warnf(format string, args ...interface{})
	// Errorf logs a formatted error.
	Errorf(format string, args ...interface{})
	// With returns a logger that adds the given key/value pairs to every line.
	With(keysAndValues ...interface{}) Logger
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewNoopLogger creates a new noop logger.
func NewNoopLogger() Logger {
	return &zapLogger{sugar: zap.NewNop().Sugar()}
}

// NewDefaultLogger creates a logger writing informational lines to stderr.
func NewDefaultLogger() Logger {
	return New(Config{Level: LevelInfo})
}

// NewVerboseLogger creates a logger that also writes debug lines.
func NewVerboseLogger() Logger {
	return New(Config{Level: LevelDebug})
}

// NewFromZap wraps an existing zap logger.
func NewFromZap(l *zap.Logger) Logger {
	return &zapLogger{sugar: l.Sugar()}
}

func (z *zapLogger) Logf(format string, args ...interface{}) {
	z.sugar.Infof(format, args...)
}

func (z *zapLogger) Debugf(format string, args ...interface{}) {
	z.sugar.Debugf(format, args...)
}

func (z *zapLogger) Warnf(format string, args ...interface{}) {
	z.sugar.Warnf(format, args...)
}

func (z *zapLogger) Errorf(format string, args ...interface{}) {
	z.sugar.Errorf(format, args...)
}

func (z *zapLogger) With(keysAndValues ...interface{}) Logger {
	return &zapLogger{sugar: z.sugar.With(keysAndValues...)}
}
