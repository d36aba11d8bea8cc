// Package logging provides the SDK's internal diagnostics logger.
//
// This logger reports on the SDK itself (dropped events, transport
// failures, configuration problems) and is distinct from the log channels
// the SDK exposes to applications; the SDK never routes its own
// diagnostics through a channel.
package logging

import (
	"context"
	"io"
	"log"
)

// Classification is the severity of a diagnostic entry.
type Classification string

// Diagnostic severities.
const (
	Debug Classification = "DEBUG"
	Warn  Classification = "WARN"
	Error Classification = "ERROR"
)

// Logger is an interface for logging diagnostic entries at certain
// classifications.
type Logger interface {
	// Logf is expected to support the standard fmt package "verbs".
	Logf(classification Classification, format string, v ...interface{})
}

// ContextLogger is an optional interface a Logger implementation may
// expose to create context aware diagnostic entries.
type ContextLogger interface {
	WithContext(context.Context) Logger
}

// WithContext passes ctx to logger if it implements ContextLogger and
// returns the resulting logger. Otherwise logger is returned as is.
func WithContext(ctx context.Context, logger Logger) Logger {
	cl, ok := logger.(ContextLogger)
	if !ok {
		return logger
	}

	return cl.WithContext(ctx)
}

// Noop is a Logger implementation that performs no logging.
type Noop struct{}

// Logf discards the entry.
func (n Noop) Logf(Classification, string, ...interface{}) {}

// StandardLogger is a Logger implementation that delegates to the standard
// library logger's Printf method.
type StandardLogger struct {
	Logger *log.Logger
}

// Logf logs the given classification and message to the underlying logger.
func (s StandardLogger) Logf(classification Classification, format string, v ...interface{}) {
	if len(classification) != 0 {
		format = string(classification) + " " + format
	}

	s.Logger.Printf(format, v...)
}

// NewStandardLogger returns a StandardLogger writing to writer.
func NewStandardLogger(writer io.Writer) *StandardLogger {
	return &StandardLogger{
		Logger: log.New(writer, "logpack ", log.LstdFlags),
	}
}
