// Package logging provides the application logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a thin wrapper over slog with key-value arguments.
type Logger struct {
	l *slog.Logger
}

// NewLogger creates a Logger writing text output to stderr.
func NewLogger(level slog.Level) *Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{l: slog.New(h)}
}

// NewSilentLogger creates a Logger that discards all output. Used in tests.
func NewSilentLogger() *Logger {
	return &Logger{l: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.l.Debug(msg, args...)
}

// Info logs an informational message.
func (l *Logger) Info(msg string, args ...any) {
	l.l.Info(msg, args...)
}

// Warn logs a warning.
func (l *Logger) Warn(msg string, args ...any) {
	l.l.Warn(msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.l.Error(msg, args...)
}
