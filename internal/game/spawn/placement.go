// Package spawn plans per-room enemy and obstacle placements, materializes
// them on demand exactly once per room, and re-spawns enemies and pickups
// while the simulation runs.
package spawn

import (
	"github.com/cory-johannsen/roomcore/internal/game/geom"
	"github.com/cory-johannsen/roomcore/internal/game/random"
	"github.com/cory-johannsen/roomcore/internal/game/world"
)

// DefaultMaxAttempts is the rejection-sampling budget used when
// Constraints.MaxAttempts is not positive.
const DefaultMaxAttempts = 30

// Circle is a circular keep-out region.
type Circle struct {
	Center geom.Vec2
	Radius float64
}

// Constraints bounds where FindSpawnPosition may place an entity.
type Constraints struct {
	// Radius of the room-centered disc candidates are drawn from. 0 means half the room unit.
	Radius float64
	// MinCenterDistance is the minimum distance from the room center.
	MinCenterDistance float64
	// WallClearance is the minimum distance from every wall of the room.
	WallClearance float64
	// DoorClearance is the minimum distance from the center of every declared door.
	DoorClearance float64
	// MinSeparation is the minimum distance from every occupied point.
	MinSeparation float64
	// MaxAttempts is the sampling budget.
	MaxAttempts int
	// BlockCircles and BlockRects are additional keep-out regions.
	BlockCircles []Circle
	BlockRects   []geom.Rect
}

// Placement is one planned entity: a position and a type tag.
type Placement struct {
	Pos  geom.Vec2
	Type string
}

// RoomPlan lists the placements planned for one room.
//
// Invariant: the plan of an entrance-themed room is empty.
type RoomPlan struct {
	Key       world.RoomKey
	Enemies   []Placement
	Obstacles []Placement
}

// Empty reports whether the plan places nothing.
func (p RoomPlan) Empty() bool {
	return len(p.Enemies) == 0 && len(p.Obstacles) == 0
}

// FindSpawnPosition draws candidate points uniformly from a disc centered
// on room and returns the first that satisfies every constraint.
//
// Precondition: grid, src and room must be non-nil.
// Postcondition: Returns (pos, true) with pos inside room on success, or
// (zero, false) when the attempt budget is exhausted.
func FindSpawnPosition(grid *world.Grid, src random.Source, room *world.Room, occupied []geom.Vec2, c Constraints) (geom.Vec2, bool) {
	center := grid.Center(room)
	bounds := grid.Bounds(room)
	radius := c.Radius
	if radius <= 0 {
		radius = grid.Unit() / 2
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	doors := room.DoorList()

	for i := 0; i < attempts; i++ {
		x, z := random.InDisc(src, center.X, center.Z, radius)
		p := geom.V2(x, z)
		if acceptable(grid, room, bounds, center, doors, p, occupied, c) {
			return p, true
		}
	}
	return geom.Vec2{}, false
}

func acceptable(grid *world.Grid, room *world.Room, bounds geom.Rect, center geom.Vec2, doors []world.Direction, p geom.Vec2, occupied []geom.Vec2, c Constraints) bool {
	if geom.Dist2D(p.X, p.Z, center.X, center.Z) < c.MinCenterDistance {
		return false
	}
	if p.X-bounds.MinX < c.WallClearance || bounds.MaxX-p.X < c.WallClearance ||
		p.Z-bounds.MinZ < c.WallClearance || bounds.MaxZ-p.Z < c.WallClearance {
		return false
	}
	// The half-open cell excludes its max edge.
	if p.X >= bounds.MaxX || p.Z >= bounds.MaxZ || p.X < bounds.MinX || p.Z < bounds.MinZ {
		return false
	}
	for _, d := range doors {
		dc := grid.DoorCenter(room, d)
		if geom.Dist2D(p.X, p.Z, dc.X, dc.Z) < c.DoorClearance {
			return false
		}
	}
	for _, o := range occupied {
		if geom.Dist2D(p.X, p.Z, o.X, o.Z) < c.MinSeparation {
			return false
		}
	}
	for _, bc := range c.BlockCircles {
		if geom.PointInCircle(p.X, p.Z, bc.Center.X, bc.Center.Z, bc.Radius) {
			return false
		}
	}
	for _, r := range c.BlockRects {
		if r.Contains(p.X, p.Z) {
			return false
		}
	}
	return true
}
