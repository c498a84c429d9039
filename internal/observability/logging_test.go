package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/tactics/internal/config"
	"github.com/cory-johannsen/tactics/internal/game/combat"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: format}, "simulate")
		require.NoError(t, err, format)
		assert.NotNil(t, logger)
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "trace", Format: "json"}, "")
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "info", Format: "xml"}, "")
	assert.Error(t, err)
}

func TestNewLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := NewLogger(config.LoggingConfig{Level: level, Format: "json"}, "")
		require.NoError(t, err, "level %q should be valid", level)
		assert.Equal(t, level == "debug", logger.Core().Enabled(zap.DebugLevel))
	}
}

func TestCombatLogObserver_WritesEntry(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	obs := NewCombatLogObserver(zap.New(core))

	obs.OnLogEntry("m1", combat.LogEntry{
		Round: 2, Sequence: 3, Kind: combat.KindAttack,
		Message: "a attacks b for 4 damage.",
		Payload: combat.Payload{ActorID: "a", TargetID: "b", Deltas: map[string]int{"damage": 4}},
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "a attacks b for 4 damage.", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "m1", ctx["match_id"])
	assert.Equal(t, int64(2), ctx["round"])
	assert.Equal(t, int64(3), ctx["sequence"])
	assert.Equal(t, "b", ctx["target_id"])
	assert.NotContains(t, ctx, "data")
}
