package random_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/roomcore/internal/game/random"
)

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := random.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	src := random.NewCryptoSource()
	assert.Panics(t, func() { src.Intn(0) })
}

func TestCryptoSource_Float64_InRange(t *testing.T) {
	src := random.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestSeededSource_SameSeedSameSequence(t *testing.T) {
	a := random.NewSeededSource(42)
	b := random.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestSeededSource_Intn_PanicsOnNegative(t *testing.T) {
	src := random.NewSeededSource(1)
	assert.Panics(t, func() { src.Intn(-3) })
}

func TestIntBetween_Inclusive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-20, 20).Draw(rt, "lo")
		span := rapid.IntRange(0, 10).Draw(rt, "span")
		seed := rapid.Int64().Draw(rt, "seed")
		v := random.IntBetween(random.NewSeededSource(seed), lo, lo+span)
		assert.GreaterOrEqual(rt, v, lo)
		assert.LessOrEqual(rt, v, lo+span)
	})
}

func TestIntBetween_DegenerateRange(t *testing.T) {
	assert.Equal(t, 4, random.IntBetween(random.NewSeededSource(1), 4, 2))
}

func TestChance_Bounds(t *testing.T) {
	src := random.NewSeededSource(7)
	for i := 0; i < 50; i++ {
		assert.False(t, random.Chance(src, 0))
		assert.True(t, random.Chance(src, 1))
	}
}

func TestUnitVector_IsUnit(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := random.NewSeededSource(rapid.Int64().Draw(rt, "seed"))
		x, z := random.UnitVector(src)
		assert.InDelta(rt, 1.0, math.Hypot(x, z), 1e-9)
	})
}

func TestInDisc_WithinRadius(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := random.NewSeededSource(rapid.Int64().Draw(rt, "seed"))
		r := rapid.Float64Range(0.1, 50).Draw(rt, "radius")
		x, z := random.InDisc(src, 3, -4, r)
		assert.LessOrEqual(rt, math.Hypot(x-3, z+4), r+1e-9)
	})
}
