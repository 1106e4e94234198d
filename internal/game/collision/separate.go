package collision

import (
	"math"

	"github.com/cory-johannsen/roomcore/internal/game/geom"
)

// Body is a circle that can be pushed around by separation. A Body whose
// Active flag is set and false takes no part in resolution.
type Body struct {
	Pos    *geom.Vec2
	Radius float64
	Active *bool
}

// live reports whether b participates in resolution.
func (b Body) live() bool { return b.Active == nil || *b.Active }

// separationNormal returns the unit vector from a to b, falling back to +X
// when the centers coincide.
func separationNormal(a, b geom.Vec2) (geom.Vec2, float64) {
	delta := b.Sub(a)
	n, ok := delta.Normalize()
	if !ok {
		return geom.V2(1, 0), 0
	}
	return n, delta.Len()
}

// SeparateEnemies pushes two overlapping circles apart, each by half the
// penetration depth.
//
// Postcondition: Returns true if a correction was applied; afterwards the
// circles are at most touching.
func SeparateEnemies(a, b Body) bool {
	if !geom.CirclesOverlap(*a.Pos, a.Radius, *b.Pos, b.Radius) {
		return false
	}
	n, dist := separationNormal(*a.Pos, *b.Pos)
	overlap := a.Radius + b.Radius - dist
	if overlap <= 0 {
		return false
	}
	*a.Pos = a.Pos.Sub(n.Scale(overlap * 0.5))
	*b.Pos = b.Pos.Add(n.Scale(overlap * 0.5))
	return true
}

// SeparateFromObstacle pushes enemy out of a static obstacle by the full
// penetration depth. The obstacle does not move.
//
// Postcondition: Returns true if a correction was applied.
func SeparateFromObstacle(enemy Body, obstacle geom.Vec2, obstacleRadius float64) bool {
	if !geom.CirclesOverlap(*enemy.Pos, enemy.Radius, obstacle, obstacleRadius) {
		return false
	}
	n, dist := separationNormal(obstacle, *enemy.Pos)
	overlap := enemy.Radius + obstacleRadius - dist
	if overlap <= 0 {
		return false
	}
	*enemy.Pos = enemy.Pos.Add(n.Scale(overlap))
	return true
}

// SeparateFromShelf pushes enemy out of an axis-aligned shelf along
// whichever axis has the smaller penetration. The enemy is treated as a
// square of half-size Radius.
//
// Postcondition: Returns true if a correction was applied.
func SeparateFromShelf(enemy Body, shelf geom.Rect) bool {
	p := *enemy.Pos
	r := enemy.Radius
	if p.X+r <= shelf.MinX || p.X-r >= shelf.MaxX || p.Z+r <= shelf.MinZ || p.Z-r >= shelf.MaxZ {
		return false
	}

	c := shelf.Center()
	var pushX, pushZ float64
	if p.X < c.X {
		pushX = shelf.MinX - (p.X + r)
	} else {
		pushX = shelf.MaxX - (p.X - r)
	}
	if p.Z < c.Z {
		pushZ = shelf.MinZ - (p.Z + r)
	} else {
		pushZ = shelf.MaxZ - (p.Z - r)
	}

	if math.Abs(pushX) <= math.Abs(pushZ) {
		p.X += pushX
	} else {
		p.Z += pushZ
	}
	*enemy.Pos = p
	return true
}

// ResolveEnvironment runs one separation pass over the live bodies: every
// enemy pair, then every enemy against every obstacle, then every enemy
// against every shelf. Pairs are visited in slice order; inactive bodies
// are skipped.
//
// Postcondition: Returns the number of corrections applied.
func ResolveEnvironment(enemies, obstacles []Body, shelves []geom.Rect) int {
	corrections := 0
	for i := 0; i < len(enemies); i++ {
		if !enemies[i].live() {
			continue
		}
		for j := i + 1; j < len(enemies); j++ {
			if enemies[j].live() && SeparateEnemies(enemies[i], enemies[j]) {
				corrections++
			}
		}
	}
	for _, e := range enemies {
		if !e.live() {
			continue
		}
		for _, o := range obstacles {
			if o.live() && SeparateFromObstacle(e, *o.Pos, o.Radius) {
				corrections++
			}
		}
		for _, s := range shelves {
			if SeparateFromShelf(e, s) {
				corrections++
			}
		}
	}
	return corrections
}

// ResolveBody separates enemies[i] from every other enemy, then from every
// obstacle and shelf. It is the per-entity form of ResolveEnvironment.
// Inactive bodies, including enemies[i] itself, are skipped.
//
// Precondition: 0 <= i < len(enemies).
// Postcondition: Returns the number of corrections applied.
func ResolveBody(i int, enemies, obstacles []Body, shelves []geom.Rect) int {
	corrections := 0
	self := enemies[i]
	if !self.live() {
		return 0
	}
	for j, other := range enemies {
		if j == i || !other.live() {
			continue
		}
		if SeparateEnemies(self, other) {
			corrections++
		}
	}
	for _, o := range obstacles {
		if o.live() && SeparateFromObstacle(self, *o.Pos, o.Radius) {
			corrections++
		}
	}
	for _, s := range shelves {
		if SeparateFromShelf(self, s) {
			corrections++
		}
	}
	return corrections
}
