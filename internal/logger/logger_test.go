package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	require.NoError(t, Init("warn"))
	assert.False(t, Log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Log.Core().Enabled(zapcore.ErrorLevel))
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	err := Init("loud")
	assert.Error(t, err)
	assert.Same(t, prev, Log)
}

func TestDefaultIsNop(t *testing.T) {
	assert.NotPanics(t, func() { zap.NewNop().Info("x"); Sync() })
}
