package logger

import (
	"context"

	"go.uber.org/zap"
)

// loggerContextKey is the context key type under which the scoped logger is stored.
// A dedicated type prevents collisions with keys from other packages.
type loggerContextKey struct{}

// ToContext returns a new context with the provided logger attached.
// Subsequent calls to FromContext with the returned context will yield this logger.
func ToContext(ctx context.Context, l *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerContextKey{}, l)
}

// FromContext extracts the logger from the context.
// If the context carries no logger, the global logger is returned instead,
// so the result is always safe to use.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(loggerContextKey{}).(*zap.SugaredLogger); ok {
		return l
	}

	return global
}

// WithName returns a new context whose logger is the current one
// extended with the provided name segment.
func WithName(ctx context.Context, name string) context.Context {
	return ToContext(ctx, FromContext(ctx).Named(name))
}

// WithKV returns a new context whose logger carries the provided key-value pair
// on every subsequent message.
func WithKV(ctx context.Context, key string, value any) context.Context {
	return ToContext(ctx, FromContext(ctx).With(key, value))
}

// WithFields returns a new context whose logger carries the provided
// strongly typed fields on every subsequent message.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	return ToContext(ctx, FromContext(ctx).Desugar().With(fields...).Sugar())
}
