// Package ai drives per-enemy movement decisions: line of sight, behavior
// dispatch, lateral drift and wall response.
package ai

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/roomcore/internal/game/collision"
	"github.com/cory-johannsen/roomcore/internal/game/entity"
	"github.com/cory-johannsen/roomcore/internal/game/geom"
	"github.com/cory-johannsen/roomcore/internal/game/random"
)

// Sight answers line-of-sight queries.
type Sight interface {
	HasLineOfSight(fromX, fromZ, toX, toZ float64) bool
}

// WallChecker validates a tentative position against room walls.
type WallChecker interface {
	CheckWallCollision(newX, newZ, margin float64) collision.WallResult
}

// Config holds the movement tuning shared by every enemy.
type Config struct {
	// BaseSpeed is the chase speed before the template multiplier.
	BaseSpeed float64
	// StopDistance is how close a chaser gets to the player.
	StopDistance float64
	// LostSightGrace is how long, in seconds, a chaser keeps heading for
	// the last-seen point after losing sight.
	LostSightGrace       float64
	LostSightSpeedFactor float64
	WanderSpeed          float64
	WanderInterval       float64
	PatrolSpeed          float64
	DriftInterval        float64
	DriftMaxSpeed        float64
	// WallMargin is the clearance kept from walls.
	WallMargin float64
}

// Controller updates enemies one tick at a time.
type Controller struct {
	sight Sight
	walls WallChecker
	src   random.Source
	cfg   Config
}

// NewController creates a Controller.
//
// Precondition: sight, walls and src must be non-nil.
func NewController(sight Sight, walls WallChecker, src random.Source, cfg Config) *Controller {
	return &Controller{sight: sight, walls: walls, src: src, cfg: cfg}
}

// Config returns the controller's tuning.
func (c *Controller) Config() Config { return c.cfg }

// Update advances e by dt seconds relative to the player position.
//
// Precondition: e must be an active enemy; dt >= 0.
// Postcondition: e.AI.LostSightTimer is 0 when the player is visible and
// has grown by dt otherwise. Returns true iff e.Pos changed.
func (c *Controller) Update(e *entity.Entity, player geom.Vec2, dt float64) bool {
	canSee := c.sight.HasLineOfSight(e.Pos.X, e.Pos.Z, player.X, player.Z)
	e.AI.CanSeePlayer = canSee
	if canSee {
		e.AI.LastSeenPlayer = player
		e.AI.HasLastSeen = true
		e.AI.LostSightTimer = 0
	} else {
		e.AI.LostSightTimer += dt
	}

	prev := e.Pos
	next := prev
	b := e.Behavior()
	switch b {
	case entity.BehaviorChase:
		next = c.chase(e, player, canSee, dt)
	case entity.BehaviorWander:
		next = c.wander(e, dt)
	case entity.BehaviorPatrol:
		next = c.patrol(e, dt)
	case entity.BehaviorStationary:
	case entity.BehaviorRoam:
		if canSee {
			next = c.approach(e, player, dt)
		} else {
			next = c.wander(e, dt)
		}
	default:
		panic(fmt.Sprintf("ai.Controller.Update: unknown behavior %q", b))
	}

	if canSee && c.drifts(b, prev, player) {
		next = c.drift(e, prev, player, next, dt)
	}

	if next == prev {
		return false
	}

	wall := c.walls.CheckWallCollision(next.X, next.Z, c.cfg.WallMargin)
	if wall.BlockedX {
		next.X = prev.X
		e.AI.DriftSpeed = -e.AI.DriftSpeed
		e.AI.WanderDir.X = -e.AI.WanderDir.X
	}
	if wall.BlockedZ {
		next.Z = prev.Z
		e.AI.DriftSpeed = -e.AI.DriftSpeed
		e.AI.WanderDir.Z = -e.AI.WanderDir.Z
	}
	e.Pos = next
	return next != prev
}

func (c *Controller) chase(e *entity.Entity, player geom.Vec2, canSee bool, dt float64) geom.Vec2 {
	if canSee {
		return c.approach(e, player, dt)
	}
	if e.AI.HasLastSeen && e.AI.LostSightTimer < c.cfg.LostSightGrace {
		speed := c.cfg.BaseSpeed * e.SpeedMultiplier() * c.cfg.LostSightSpeedFactor
		return moveToward(e.Pos, e.AI.LastSeenPlayer, speed*dt, 0)
	}
	return c.wander(e, dt)
}

// approach moves toward the visible player, stopping at StopDistance.
func (c *Controller) approach(e *entity.Entity, player geom.Vec2, dt float64) geom.Vec2 {
	speed := c.cfg.BaseSpeed * e.SpeedMultiplier()
	return moveToward(e.Pos, player, speed*dt, c.cfg.StopDistance)
}

// drifts reports whether a visible enemy with behavior b at pos drifts.
// Stationary enemies never drift; chasers hold still at StopDistance.
func (c *Controller) drifts(b entity.Behavior, pos, player geom.Vec2) bool {
	switch b {
	case entity.BehaviorStationary:
		return false
	case entity.BehaviorChase, entity.BehaviorRoam:
		return geom.Dist2D(pos.X, pos.Z, player.X, player.Z) > c.cfg.StopDistance
	}
	return true
}

// drift advances the drift timer, resamples DriftSpeed every DriftInterval
// and offsets next perpendicular to the direction from prev to the player.
func (c *Controller) drift(e *entity.Entity, prev, player, next geom.Vec2, dt float64) geom.Vec2 {
	e.AI.DriftTimer += dt
	if e.AI.DriftTimer > c.cfg.DriftInterval {
		e.AI.DriftTimer = 0
		e.AI.DriftSpeed = random.Between(c.src, -c.cfg.DriftMaxSpeed, c.cfg.DriftMaxSpeed)
	}
	if dir, ok := player.Sub(prev).Normalize(); ok && e.AI.DriftSpeed != 0 {
		next = next.Add(dir.Perp().Scale(e.AI.DriftSpeed * dt))
	}
	return next
}

func (c *Controller) wander(e *entity.Entity, dt float64) geom.Vec2 {
	e.AI.WanderTimer -= dt
	if e.AI.WanderTimer <= 0 {
		x, z := random.UnitVector(c.src)
		e.AI.WanderDir = geom.V2(x, z)
		e.AI.WanderTimer = c.cfg.WanderInterval
	}
	return e.Pos.Add(e.AI.WanderDir.Scale(c.cfg.WanderSpeed * dt))
}

func (c *Controller) patrol(e *entity.Entity, dt float64) geom.Vec2 {
	e.AI.PatrolTimer += dt
	s := math.Sin(e.AI.PatrolTimer)
	var sign float64
	switch {
	case s > 0:
		sign = 1
	case s < 0:
		sign = -1
	}
	return geom.V2(e.Pos.X+sign*c.cfg.PatrolSpeed*dt, e.Pos.Z)
}

// moveToward steps from toward target by at most step, never ending
// closer than stop.
func moveToward(from, target geom.Vec2, step, stop float64) geom.Vec2 {
	to := target.Sub(from)
	dist := to.Len()
	if dist <= stop || step <= 0 {
		return from
	}
	if step > dist-stop {
		step = dist - stop
	}
	dir, _ := to.Normalize()
	return from.Add(dir.Scale(step))
}
