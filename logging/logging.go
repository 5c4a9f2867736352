// Package logging adapts log/slog into the msp430.Logger interface, the way
// retrogolib/log wraps slog into its own Logger type: a thin Config/
// NewWithConfig construction shape, a console handler, and a level filter
// checked before the core ever builds a field slice.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/grahame-white/msp430emu/msp430"
)

// Config configures a Logger, mirroring retrogolib/log's Config shape.
type Config struct {
	Level  msp430.Level
	Output io.Writer
}

// DefaultConfig returns the default config: LevelInfo, writing to stdout.
func DefaultConfig() Config {
	return Config{Level: msp430.LevelInfo, Output: os.Stdout}
}

// Logger implements msp430.Logger over a slog.Logger.
type Logger struct {
	logger *slog.Logger
	level  *slog.LevelVar
}

// New returns a Logger using DefaultConfig.
func New() *Logger {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig builds a Logger for the given config.
func NewWithConfig(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	levelVar := &slog.LevelVar{}
	levelVar.Set(toSlogLevel(cfg.Level))

	handler := slog.NewTextHandler(output, &slog.HandlerOptions{Level: levelVar})
	return &Logger{logger: slog.New(handler), level: levelVar}
}

// SetLevel alters the logger's minimum emitted level.
func (l *Logger) SetLevel(level msp430.Level) {
	l.level.Set(toSlogLevel(level))
}

// Enabled reports whether the given level would currently be emitted.
func (l *Logger) Enabled(level msp430.Level) bool {
	return l.logger.Enabled(context.Background(), toSlogLevel(level))
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(msg string, fields ...msp430.Field) {
	l.log(msp430.LevelDebug, msg, fields)
}

// Info logs at LevelInfo.
func (l *Logger) Info(msg string, fields ...msp430.Field) {
	l.log(msp430.LevelInfo, msg, fields)
}

// Warning logs at LevelWarning.
func (l *Logger) Warning(msg string, fields ...msp430.Field) {
	l.log(msp430.LevelWarning, msg, fields)
}

// Error logs at LevelError.
func (l *Logger) Error(msg string, fields ...msp430.Field) {
	l.log(msp430.LevelError, msg, fields)
}

func (l *Logger) log(level msp430.Level, msg string, fields []msp430.Field) {
	slogLevel := toSlogLevel(level)
	if !l.logger.Enabled(context.Background(), slogLevel) {
		return
	}
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	l.logger.Log(context.Background(), slogLevel, msg, args...)
}

func toSlogLevel(level msp430.Level) slog.Level {
	switch level {
	case msp430.LevelDebug:
		return slog.LevelDebug
	case msp430.LevelInfo:
		return slog.LevelInfo
	case msp430.LevelWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Nop returns a Logger-compatible no-op, for tests and embedders that don't
// want console output. It is simply msp430.NopLogger re-exported under this
// package so callers don't need to import both.
func Nop() msp430.Logger {
	return msp430.NopLogger{}
}
