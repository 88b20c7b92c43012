package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
)

// WithLogger returns a copy of ctx carrying l.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOrDefault(ctx, slog.Default())
}

// FromContextOrDefault returns the logger stored in ctx, or fallback when
// ctx carries none. A request ID stored with WithRequestID is attached.
func FromContextOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	l := fallback
	if ctx == nil {
		return l
	}
	if fromCtx, ok := ctx.Value(loggerKey).(*slog.Logger); ok && fromCtx != nil {
		l = fromCtx
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		l = l.With(slog.String("request_id", id))
	}
	return l
}

// WithRequestID returns a copy of ctx carrying a request correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the correlation ID stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
