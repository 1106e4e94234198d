// Package visibility answers line-of-sight queries over the room grid.
//
// A ray between two world points is marched at a fixed step. Whenever two
// consecutive samples fall in different rooms the crossing must pass
// through a door pair, within the door aperture, or the ray is blocked.
//
// Accuracy: the crossing point on the shared wall is interpolated exactly
// between the two samples, so step size only matters when a ray clips a
// room corner between samples. A clipped corner yields a diagonal grid
// delta and is reported blocked. That can only differ from an exact
// segment test when the wall crossing lies within one step of a corner,
// which is outside every aperture as long as
// doorWidth/2 + tolerance + step < unit/2. DefaultStep keeps the step at or
// below a quarter door width.
package visibility

import (
	"math"

	"github.com/cory-johannsen/roomcore/internal/game/geom"
	"github.com/cory-johannsen/roomcore/internal/game/world"
)

// DefaultTolerance is added to the door half-width when testing apertures.
const DefaultTolerance = 0.05

// DefaultStep returns the ray-march step for a grid: unit/15, capped at a
// quarter of the door width.
func DefaultStep(unit, doorWidth float64) float64 {
	return math.Min(unit/15, doorWidth/4)
}

// Service is the line-of-sight oracle. It holds no mutable state and is
// safe for concurrent use as long as the grid is.
type Service struct {
	grid      *world.Grid
	step      float64
	tolerance float64
}

// NewService creates a Service over grid.
//
// Precondition: grid must be non-nil.
// Postcondition: step <= 0 selects DefaultStep; tolerance < 0 selects DefaultTolerance.
func NewService(grid *world.Grid, step, tolerance float64) *Service {
	if step <= 0 {
		step = DefaultStep(grid.Unit(), grid.DoorWidth())
	}
	if tolerance < 0 {
		tolerance = DefaultTolerance
	}
	return &Service{grid: grid, step: step, tolerance: tolerance}
}

// Step returns the ray-march step length.
func (s *Service) Step() float64 { return s.step }

// HasLineOfSight reports whether an unobstructed ray joins (fromX, fromZ)
// and (toX, toZ).
//
// Postcondition: false when either endpoint is outside every room; true
// when both endpoints share a room.
func (s *Service) HasLineOfSight(fromX, fromZ, toX, toZ float64) bool {
	fromRoom, ok := s.grid.GetRoomAtWorld(fromX, fromZ)
	if !ok {
		return false
	}
	toRoom, ok := s.grid.GetRoomAtWorld(toX, toZ)
	if !ok {
		return false
	}
	if fromRoom == toRoom {
		return true
	}

	from := geom.V2(fromX, fromZ)
	to := geom.V2(toX, toZ)
	samples := int(math.Ceil(to.Sub(from).Len() / s.step))
	if samples < 1 {
		samples = 1
	}

	prev := from
	prevRoom := fromRoom
	for i := 1; i <= samples; i++ {
		p := to
		if i < samples {
			p = from.Lerp(to, float64(i)/float64(samples))
		}
		room, ok := s.grid.GetRoomAtWorld(p.X, p.Z)
		if !ok {
			return false
		}
		if room != prevRoom {
			if !s.passesDoor(prevRoom, room, prev, p) {
				return false
			}
			prevRoom = room
		}
		prev = p
	}
	return true
}

// Visible is HasLineOfSight over vectors.
func (s *Service) Visible(from, to geom.Vec2) bool {
	return s.HasLineOfSight(from.X, from.Z, to.X, to.Z)
}

// passesDoor reports whether the step p0 -> p1, which moves from room a to
// room b, crosses their shared wall inside a door aperture.
func (s *Service) passesDoor(a, b *world.Room, p0, p1 geom.Vec2) bool {
	dir, ok := world.DirectionFromDelta(b.GridX-a.GridX, b.GridZ-a.GridZ)
	if !ok {
		return false
	}
	if !a.HasDoor(dir) || !b.HasDoor(dir.Opposite()) {
		return false
	}

	door := s.grid.DoorCenter(a, dir)
	half := s.grid.DoorWidth()/2 + s.tolerance

	var along float64
	switch dir {
	case world.North, world.South:
		t := (door.Z - p0.Z) / (p1.Z - p0.Z)
		along = p0.X + t*(p1.X-p0.X) - door.X
	case world.East, world.West:
		t := (door.X - p0.X) / (p1.X - p0.X)
		along = p0.Z + t*(p1.Z-p0.Z) - door.Z
	}
	return math.Abs(along) <= half
}
