package collision_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/roomcore/internal/game/collision"
	"github.com/cory-johannsen/roomcore/internal/game/geom"
)

func body(x, z, r float64) collision.Body {
	p := geom.V2(x, z)
	return collision.Body{Pos: &p, Radius: r}
}

func TestSeparateEnemies_SplitsCorrection(t *testing.T) {
	a := body(0, 0, 1)
	b := body(1, 0, 1)
	assert.True(t, collision.SeparateEnemies(a, b))
	assert.InDelta(t, -0.5, a.Pos.X, 1e-9)
	assert.InDelta(t, 1.5, b.Pos.X, 1e-9)
}

func TestSeparateEnemies_NoOverlap(t *testing.T) {
	a := body(0, 0, 1)
	b := body(3, 0, 1)
	assert.False(t, collision.SeparateEnemies(a, b))
	assert.Equal(t, 0.0, a.Pos.X)
	assert.Equal(t, 3.0, b.Pos.X)
}

func TestSeparateEnemies_CoincidentCenters(t *testing.T) {
	a := body(5, 5, 1)
	b := body(5, 5, 1)
	assert.True(t, collision.SeparateEnemies(a, b))
	assert.InDelta(t, 2.0, b.Pos.Sub(*a.Pos).Len(), 1e-9)
}

func TestPropertySeparateEnemiesLeavesTouching(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := body(rapid.Float64Range(-10, 10).Draw(t, "ax"), rapid.Float64Range(-10, 10).Draw(t, "az"), rapid.Float64Range(0.1, 3).Draw(t, "ar"))
		b := body(rapid.Float64Range(-10, 10).Draw(t, "bx"), rapid.Float64Range(-10, 10).Draw(t, "bz"), rapid.Float64Range(0.1, 3).Draw(t, "br"))
		midBefore := a.Pos.Add(*b.Pos).Scale(0.5)
		if collision.SeparateEnemies(a, b) {
			assert.InDelta(t, a.Radius+b.Radius, b.Pos.Sub(*a.Pos).Len(), 1e-6)
			midAfter := a.Pos.Add(*b.Pos).Scale(0.5)
			assert.InDelta(t, midBefore.X, midAfter.X, 1e-6)
			assert.InDelta(t, midBefore.Z, midAfter.Z, 1e-6)
		}
	})
}

func TestSeparateFromObstacle_PushesOnlyEnemy(t *testing.T) {
	e := body(1, 0, 1)
	obstacle := geom.V2(0, 0)
	assert.True(t, collision.SeparateFromObstacle(e, obstacle, 1.5))
	assert.InDelta(t, 2.5, e.Pos.X, 1e-9)
	assert.Equal(t, geom.V2(0, 0), obstacle)
}

func TestSeparateFromShelf_SmallerAxis(t *testing.T) {
	shelf := geom.Rect{MinX: 0, MinZ: 0, MaxX: 10, MaxZ: 2}

	e := body(5, 2.5, 1)
	assert.True(t, collision.SeparateFromShelf(e, shelf))
	assert.InDelta(t, 5.0, e.Pos.X, 1e-9)
	assert.InDelta(t, 3.0, e.Pos.Z, 1e-9)

	w := body(-0.5, 1, 1)
	assert.True(t, collision.SeparateFromShelf(w, shelf))
	assert.InDelta(t, -1.0, w.Pos.X, 1e-9)
	assert.InDelta(t, 1.0, w.Pos.Z, 1e-9)

	clear := body(20, 20, 1)
	assert.False(t, collision.SeparateFromShelf(clear, shelf))
}

func TestResolveEnvironment(t *testing.T) {
	e1 := body(0, 0, 1)
	e2 := body(1, 0, 1)
	o := body(10, 0, 1)
	far := body(9.5, 0, 0.2)
	shelves := []geom.Rect{{MinX: -1, MinZ: 5, MaxX: 1, MaxZ: 6}}

	n := collision.ResolveEnvironment([]collision.Body{e1, e2, far}, []collision.Body{o}, shelves)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 2.0, e2.Pos.Sub(*e1.Pos).Len(), 1e-9)
	assert.InDelta(t, 8.8, far.Pos.X, 1e-9)
	assert.Equal(t, geom.V2(10, 0), *o.Pos)
}

func TestResolveBody_OnlyTouchesPairsWithSelf(t *testing.T) {
	a := body(0, 0, 1)
	b := body(1, 0, 1)
	c := body(20, 0, 1)
	d := body(20.5, 0, 1)
	enemies := []collision.Body{a, b, c, d}
	obstacle := body(0, 1.5, 1)

	n := collision.ResolveBody(0, enemies, []collision.Body{obstacle}, nil)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 1.5, b.Pos.X, 1e-9, "partner gets half the correction")
	assert.Equal(t, 20.0, c.Pos.X, "unrelated pair untouched")
	assert.Equal(t, 20.5, d.Pos.X)
	assert.Equal(t, 1.5, obstacle.Pos.Z, "obstacles never move")
}

func TestResolveBody_SkipsInactiveBodies(t *testing.T) {
	a := body(0, 0, 1)
	gone := body(1, 0, 1)
	inactive := false
	gone.Active = &inactive
	obstacle := body(0, 1.5, 1)
	obstacle.Active = &inactive

	n := collision.ResolveBody(0, []collision.Body{a, gone}, []collision.Body{obstacle}, nil)
	assert.Equal(t, 0, n)
	assert.Equal(t, geom.V2(0, 0), *a.Pos)
	assert.Equal(t, geom.V2(1, 0), *gone.Pos)

	assert.Equal(t, 0, collision.ResolveBody(1, []collision.Body{a, gone}, nil, nil), "an inactive body is not resolved")
	assert.Equal(t, 0, collision.ResolveEnvironment([]collision.Body{a, gone}, []collision.Body{obstacle}, nil))

	active := true
	gone.Active = &active
	assert.Equal(t, 1, collision.ResolveBody(0, []collision.Body{a, gone}, nil, nil))
}
