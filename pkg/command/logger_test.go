package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapLogger(zap.New(core))

	log.Info("Removed file", "path", "/runs/bbh/Reductions.h5", "size", 42)
	log.Warn("Odd arguments", "dangling")
	log.Debug("Non-string key", 7, true)

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, map[string]interface{}{"path": "/runs/bbh/Reductions.h5", "size": int64(42)}, entries[0].ContextMap())
		assert.Equal(t, map[string]interface{}{"!BADKEY": "dangling"}, entries[1].ContextMap())
		assert.Equal(t, map[string]interface{}{"7": true}, entries[2].ContextMap())
		assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
	}
}

func TestNopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		NopLogger().Error("ignored", "key", "value")
		NewZapLogger(nil).Info("ignored")
	})
}
