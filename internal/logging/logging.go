package logging

import (
	"io"
	"log/slog"
)

// Verbose reports whether debug logging is enabled.
var Verbose bool

var logger = slog.Default()

// Setup configures the package logger. With verbose set, debug-level
// messages are emitted; with jsonOutput set, records are written as JSON
// instead of logfmt-style text.
func Setup(verbose, jsonOutput bool, w io.Writer) {
	Verbose = verbose

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger = slog.New(handler)
}

// Debug logs a debug-level message. Only emitted in verbose mode.
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info logs an info-level message.
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs a warning-level message.
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs an error-level message.
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}
