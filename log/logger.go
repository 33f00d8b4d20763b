package log

import "context"

// Fields carries structured log attributes.
type Fields map[string]any

// Logger is the logging interface used across the module. Implementations
// must be safe for concurrent use.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Fields)
	Info(ctx context.Context, msg string, fields ...Fields)
	Warn(ctx context.Context, msg string, fields ...Fields)
	Error(ctx context.Context, msg string, err error, fields ...Fields)
	// With returns a new logger carrying the given fields on every event.
	With(fields Fields) Logger
}

// nopLogger discards everything. Useful as a default when no logger is wired.
type nopLogger struct{}

// NewNop returns a logger that drops all events.
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Debug(context.Context, string, ...Fields)        {}
func (nopLogger) Info(context.Context, string, ...Fields)         {}
func (nopLogger) Warn(context.Context, string, ...Fields)         {}
func (nopLogger) Error(context.Context, string, error, ...Fields) {}
func (nopLogger) With(Fields) Logger                              { return nopLogger{} }
