package logger

import (
	"context"
	"log/slog"
)

// loggerContextKey is the private context key type for logger values.
type loggerContextKey struct{}

// WithLogger returns a new context carrying the given logger.
// Passing a nil logger panics: a caller that attaches a logger must
// attach a real one.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		panic("logger.WithLogger: nil logger")
	}
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// FromContext retrieves the logger from the context.
// If no logger is present, the process default logger is returned.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// FromContextOrDefault retrieves the logger from the context, falling back
// to the given default when the context carries none. A nil fallback falls
// through to the process default logger.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok {
		return logger
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}
