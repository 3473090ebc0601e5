package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("Respects configured level", func(t *testing.T) {
		logger, err := New(Config{Level: "warn", OutputPaths: []string{"stderr"}})
		require.NoError(t, err)
		defer logger.Sync()

		assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("Debug level enables everything", func(t *testing.T) {
		logger, err := New(Config{Level: "debug", OutputPaths: []string{"stderr"}})
		require.NoError(t, err)
		defer logger.Sync()

		assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("Rejects unknown level", func(t *testing.T) {
		_, err := New(Config{Level: "loud", OutputPaths: []string{"stderr"}})
		assert.Error(t, err)
	})
}

func TestNewDefault(t *testing.T) {
	logger := NewDefault()
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}
