package collision_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/roomcore/internal/game/collision"
	"github.com/cory-johannsen/roomcore/internal/game/world"
)

func newResolver(t testing.TB, build func(g *world.Grid)) *collision.Resolver {
	t.Helper()
	g, err := world.NewGrid(40, 8)
	require.NoError(t, err)
	build(g)
	return collision.NewResolver(g)
}

func TestCheckWallCollision_OutsideGridFullyBlocked(t *testing.T) {
	r := newResolver(t, func(g *world.Grid) { g.AddRoom(0, 0, "office") })
	res := r.CheckWallCollision(100, 100, 1)
	assert.Equal(t, collision.WallResult{Blocked: true, BlockedX: true, BlockedZ: true}, res)
}

func TestPropertyOutsideGridFullyBlocked(t *testing.T) {
	r := newResolver(t, func(g *world.Grid) { g.GenerateGrid(2, 2, "office") })
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Float64Range(80.001, 1000).Draw(t, "x")
		z := rapid.Float64Range(-1000, 1000).Draw(t, "z")
		res := r.CheckWallCollision(x, z, rapid.Float64Range(0, 5).Draw(t, "margin"))
		assert.True(t, res.Blocked)
		assert.True(t, res.BlockedX)
		assert.True(t, res.BlockedZ)
	})
}

func TestCheckWallCollision_InteriorFree(t *testing.T) {
	r := newResolver(t, func(g *world.Grid) { g.AddRoom(0, 0, "office") })
	assert.Equal(t, collision.WallResult{}, r.CheckWallCollision(20, 20, 1))
}

func TestCheckWallCollision_IndependentAxes(t *testing.T) {
	r := newResolver(t, func(g *world.Grid) { g.AddRoom(0, 0, "office") })

	east := r.CheckWallCollision(39.5, 20, 1)
	assert.True(t, east.Blocked)
	assert.True(t, east.BlockedX)
	assert.False(t, east.BlockedZ)

	south := r.CheckWallCollision(20, 0.5, 1)
	assert.True(t, south.BlockedZ)
	assert.False(t, south.BlockedX)

	corner := r.CheckWallCollision(0.5, 39.5, 1)
	assert.True(t, corner.BlockedX)
	assert.True(t, corner.BlockedZ)
}

func TestCheckWallCollision_DoorAperture(t *testing.T) {
	r := newResolver(t, func(g *world.Grid) {
		g.AddRoom(0, 0, "office", world.North)
		g.AddRoom(0, 1, "office", world.South)
	})

	inDoor := r.CheckWallCollision(21, 39.5, 1)
	assert.False(t, inDoor.Blocked)

	besideDoor := r.CheckWallCollision(30, 39.5, 1)
	assert.True(t, besideDoor.BlockedZ)

	otherSide := r.CheckWallCollision(21, 40.5, 1)
	assert.False(t, otherSide.Blocked, "neighbor declares the matching door")
}

func TestCheckWallCollision_OneSidedDoor(t *testing.T) {
	r := newResolver(t, func(g *world.Grid) {
		g.AddRoom(0, 0, "office", world.East)
		g.AddRoom(1, 0, "office")
	})
	assert.False(t, r.CheckWallCollision(39.5, 20, 1).Blocked)
	assert.True(t, r.CheckWallCollision(40.5, 20, 1).BlockedX, "room (1,0) has no west door")
}
