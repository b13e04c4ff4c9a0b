// Package log defines the minimal logging interface microgit code logs
// through, and the context plumbing used to carry a logger across layers.
package log

import "context"

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o mocks/fake_logger.go . Logger

// Logger is a minimal structured logging interface. keysAndValues are
// alternating keys and values, slog style.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// loggerCtxKey is the key used to store the logger in the context.
type loggerCtxKey struct{}

// ToContext returns a context carrying the given logger. Operations run
// with that context log through it.
func ToContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext returns the logger carried by the context. If the context
// carries none, a no-op logger is returned, so callers never check for nil.
func FromContext(ctx context.Context) Logger {
	logger, ok := ctx.Value(loggerCtxKey{}).(Logger)
	if !ok {
		return Noop()
	}
	return logger
}

// Noop returns a logger that discards everything.
func Noop() Logger {
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, keysAndValues ...any) {}
func (noopLogger) Info(msg string, keysAndValues ...any)  {}
func (noopLogger) Warn(msg string, keysAndValues ...any)  {}
func (noopLogger) Error(msg string, keysAndValues ...any) {}
