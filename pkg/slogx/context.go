package slogx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// WithContext attaches logger to ctx so downstream code logs with the same
// request-scoped attributes.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, falling back to the default.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithSession tags the context logger with the session being operated on.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return WithContext(ctx, FromContext(ctx).With("session_id", sessionID))
}
