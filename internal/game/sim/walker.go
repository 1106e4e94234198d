package sim

import (
	"github.com/cory-johannsen/roomcore/internal/game/geom"
	"github.com/cory-johannsen/roomcore/internal/game/random"
	"github.com/cory-johannsen/roomcore/internal/game/world"
)

// arriveDistance is how close the walker gets to a room center before
// choosing its next room.
const arriveDistance = 0.25

// Walker is a scripted player that walks from room center to room center
// through doors, choosing a random door-connected neighbor each time.
type Walker struct {
	grid    *world.Grid
	src     random.Source
	speed   float64
	pos     geom.Vec2
	target  geom.Vec2
	heading geom.Vec2
}

// NewWalker creates a Walker at start moving at speed units per second.
//
// Precondition: grid and src must be non-nil; speed >= 0.
func NewWalker(grid *world.Grid, src random.Source, start geom.Vec2, speed float64) *Walker {
	return &Walker{grid: grid, src: src, speed: speed, pos: start, target: start}
}

// Position returns the walker's current position.
func (w *Walker) Position() geom.Vec2 { return w.pos }

// Advance moves the walker by dt seconds.
//
// Postcondition: Returns the new position and the current travel direction
// (zero when standing still).
func (w *Walker) Advance(dt float64) (pos, heading geom.Vec2) {
	if geom.Dist2D(w.pos.X, w.pos.Z, w.target.X, w.target.Z) <= arriveDistance {
		w.pos = w.target
		w.pickTarget()
	}
	to := w.target.Sub(w.pos)
	dir, ok := to.Normalize()
	if !ok {
		w.heading = geom.Vec2{}
		return w.pos, w.heading
	}
	step := w.speed * dt
	if step > to.Len() {
		step = to.Len()
	}
	w.pos = w.pos.Add(dir.Scale(step))
	w.heading = dir
	return w.pos, w.heading
}

func (w *Walker) pickTarget() {
	room, ok := w.grid.GetRoomAtWorld(w.pos.X, w.pos.Z)
	if !ok {
		return
	}
	next := w.grid.ConnectedNeighbors(room)
	if len(next) == 0 {
		return
	}
	w.target = w.grid.Center(next[w.src.Intn(len(next))])
}
