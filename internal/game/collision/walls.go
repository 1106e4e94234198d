// Package collision resolves movement against room walls and pushes
// overlapping bodies apart. The pure geometric primitives it builds on live
// in package geom.
package collision

import (
	"math"

	"github.com/cory-johannsen/roomcore/internal/game/world"
)

// WallResult reports which movement axes a wall blocks. Callers revert only
// the blocked axis so bodies slide along walls.
type WallResult struct {
	Blocked  bool
	BlockedX bool
	BlockedZ bool
}

// fullyBlocked is returned for positions outside every room.
var fullyBlocked = WallResult{Blocked: true, BlockedX: true, BlockedZ: true}

// Resolver checks positions against the walls of the room grid.
type Resolver struct {
	grid *world.Grid
}

// NewResolver creates a Resolver over grid.
//
// Precondition: grid must be non-nil.
func NewResolver(grid *world.Grid) *Resolver {
	return &Resolver{grid: grid}
}

// CheckWallCollision tests the candidate position (newX, newZ) against the
// four walls of the room containing it. A wall blocks when the position is
// within margin of it, unless that wall carries a door and the position is
// inside the door aperture. East and west walls block X; north and south
// walls block Z.
//
// Postcondition: positions outside every room are fully blocked.
func (r *Resolver) CheckWallCollision(newX, newZ, margin float64) WallResult {
	room, ok := r.grid.GetRoomAtWorld(newX, newZ)
	if !ok {
		return fullyBlocked
	}
	b := r.grid.Bounds(room)
	c := r.grid.Center(room)
	half := r.grid.DoorWidth() / 2

	inAperture := func(d world.Direction, along, mid float64) bool {
		return room.HasDoor(d) && math.Abs(along-mid) <= half
	}

	var res WallResult
	if newX-b.MinX < margin && !inAperture(world.West, newZ, c.Z) {
		res.BlockedX = true
	}
	if b.MaxX-newX < margin && !inAperture(world.East, newZ, c.Z) {
		res.BlockedX = true
	}
	if newZ-b.MinZ < margin && !inAperture(world.South, newX, c.X) {
		res.BlockedZ = true
	}
	if b.MaxZ-newZ < margin && !inAperture(world.North, newX, c.X) {
		res.BlockedZ = true
	}
	res.Blocked = res.BlockedX || res.BlockedZ
	return res
}
