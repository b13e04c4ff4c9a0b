package log_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/microgit/log"
	"github.com/grafana/microgit/log/mocks"
)

func TestContextLogger(t *testing.T) {
	t.Run("carries the logger", func(t *testing.T) {
		logger := &mocks.FakeLogger{}
		ctx := log.ToContext(context.Background(), logger)

		log.FromContext(ctx).Info("hello", "key", "value")

		require.Equal(t, 1, logger.InfoCallCount())
		msg, kv := logger.InfoArgsForCall(0)
		assert.Equal(t, "hello", msg)
		assert.Equal(t, []any{"key", "value"}, kv)
	})

	t.Run("does not leak into the parent context", func(t *testing.T) {
		parent := context.Background()
		logger := &mocks.FakeLogger{}
		_ = log.ToContext(parent, logger)

		log.FromContext(parent).Debug("dropped")
		assert.Zero(t, logger.DebugCallCount())
	})

	t.Run("empty context yields a usable noop", func(t *testing.T) {
		logger := log.FromContext(context.Background())
		require.NotNil(t, logger)
		// Must not panic.
		logger.Debug("d")
		logger.Info("i")
		logger.Warn("w")
		logger.Error("e")
	})
}
