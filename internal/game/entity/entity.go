package entity

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/roomcore/internal/game/collision"
	"github.com/cory-johannsen/roomcore/internal/game/geom"
)

// Handle is an opaque reference to the entity's visual representation.
type Handle any

// AIState holds the behavior controller's per-entity bookkeeping.
type AIState struct {
	// LastSeenPlayer is the most recent position the player was visible at.
	LastSeenPlayer geom.Vec2
	// HasLastSeen is false until the player has been seen once.
	HasLastSeen bool
	// LostSightTimer is the number of seconds since the player was last visible.
	LostSightTimer float64
	// CanSeePlayer caches this tick's line-of-sight result.
	CanSeePlayer bool
	WanderDir    geom.Vec2
	WanderTimer  float64
	// DriftSpeed is the signed lateral speed applied while chasing.
	DriftSpeed  float64
	DriftTimer  float64
	PatrolTimer float64
}

// Entity is the canonical runtime record for an enemy, obstacle or pickup.
type Entity struct {
	ID       string
	Kind     Kind
	Template *Template
	// TypeTag names the placement type; equals Template.ID when a template is bound.
	TypeTag string
	Pos     geom.Vec2
	Radius  float64
	Health  int
	// Active is false once the entity has died or been despawned.
	Active bool
	Handle Handle
	AI     AIState
}

// New creates an active entity of kind at pos. tmpl may be nil, in which
// case radius and health fall back to the given defaults.
//
// Postcondition: ID is a fresh uuid; Health >= 1; Radius > 0 when defaultRadius > 0.
func New(kind Kind, tmpl *Template, typeTag string, pos geom.Vec2, defaultRadius float64) *Entity {
	e := &Entity{
		ID:       uuid.NewString(),
		Kind:     kind,
		Template: tmpl,
		TypeTag:  typeTag,
		Pos:      pos,
		Radius:   defaultRadius,
		Health:   1,
		Active:   true,
	}
	if tmpl != nil {
		if tmpl.Radius > 0 {
			e.Radius = tmpl.Radius
		}
		if tmpl.MaxHealth > 0 {
			e.Health = tmpl.MaxHealth
		}
		if typeTag == "" {
			e.TypeTag = tmpl.ID
		}
	}
	return e
}

// Behavior returns the entity's AI behavior. Entities without a template roam.
func (e *Entity) Behavior() Behavior {
	if e.Template == nil || e.Template.Behavior == "" {
		return BehaviorRoam
	}
	return e.Template.Behavior
}

// SpeedMultiplier returns the template's speed multiplier, or 1.
func (e *Entity) SpeedMultiplier() float64 {
	if e.Template == nil {
		return 1
	}
	return e.Template.Speed()
}

// Damage subtracts amount from Health. An entity whose health drops to
// zero or below is deactivated.
//
// Precondition: amount >= 0.
// Postcondition: Returns true iff this call killed the entity.
func (e *Entity) Damage(amount int) bool {
	if !e.Active || amount <= 0 {
		return false
	}
	e.Health -= amount
	if e.Health <= 0 {
		e.Health = 0
		e.Active = false
		return true
	}
	return false
}

// IsDead reports whether the entity has zero or fewer hit points.
func (e *Entity) IsDead() bool {
	return e.Health <= 0
}

// Body returns a collision body aliasing the entity's position.
func (e *Entity) Body() collision.Body {
	return collision.Body{Pos: &e.Pos, Radius: e.Radius, Active: &e.Active}
}
