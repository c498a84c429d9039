package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tactics/internal/game/dice"
)

// TestCryptoSource_Intn_InRange verifies the postcondition:
// every value returned by Intn(6) is in [0, 6).
func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Float64_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

// TestCryptoSource_Intn_PanicsOnZero verifies the precondition:
// Intn panics when called with n <= 0.
func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := dice.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewSeededSource(7).Intn(0) })
}

func TestSeededSource_ZeroSeedMatchesOne(t *testing.T) {
	a := dice.NewSeededSource(0)
	b := dice.NewSeededSource(1)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestSeededSource_Property_SameSeedSameSequence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		n := rapid.IntRange(1, 50).Draw(rt, "draws")
		a := dice.NewSeededSource(seed)
		b := dice.NewSeededSource(seed)
		for i := 0; i < n; i++ {
			assert.Equal(rt, a.Intn(100), b.Intn(100))
			assert.Equal(rt, a.Float64(), b.Float64())
		}
	})
}

func TestPercentile_Property_InRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := dice.NewSeededSource(rapid.Int64().Draw(rt, "seed"))
		v := dice.Percentile(src)
		assert.GreaterOrEqual(rt, v, 0)
		assert.Less(rt, v, 100)
	})
}

func TestChance_Bounds(t *testing.T) {
	src := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.False(t, dice.Chance(src, 0))
		assert.True(t, dice.Chance(src, 1))
	}
}

func TestNewSeed(t *testing.T) {
	_, err := dice.NewSeed()
	require.NoError(t, err)
}

func TestLoggedSource_LogsEveryDraw(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	src := dice.NewLoggedSource(dice.NewSeededSource(3), zap.New(core))

	v := src.Intn(10)
	f := src.Float64()

	assert.GreaterOrEqual(t, v, 0)
	assert.Less(t, f, 1.0)
	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "random draw", entry.Message)
	assert.Equal(t, int64(10), entry.ContextMap()["bound"])
	assert.Equal(t, int64(v), entry.ContextMap()["value"])
}
