package entity

import (
	"fmt"
	"sync"

	"github.com/cory-johannsen/roomcore/internal/game/geom"
)

// Registry tracks all live entities in insertion order.
// All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	order    []*Entity
	byID     map[string]*Entity
	onRemove func(*Entity)
}

// NewRegistry creates an empty Registry. onRemove, if non-nil, is invoked
// for every entity that leaves the live set.
func NewRegistry(onRemove func(*Entity)) *Registry {
	return &Registry{
		byID:     make(map[string]*Entity),
		onRemove: onRemove,
	}
}

// Add registers e.
//
// Precondition: e must be non-nil.
// Postcondition: Returns an error if an entity with the same ID is already live.
func (r *Registry) Add(e *Entity) error {
	if e == nil {
		return fmt.Errorf("entity.Registry.Add: entity must not be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byID[e.ID]; dup {
		return fmt.Errorf("entity %q already registered", e.ID)
	}
	r.byID[e.ID] = e
	r.order = append(r.order, e)
	return nil
}

// Remove deactivates and deletes the entity with the given ID.
//
// Postcondition: Returns false if the ID is not live.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	removed := r.removeWhereLocked(func(e *Entity) bool { return e.ID == id })
	r.mu.Unlock()
	r.notify(removed)
	return len(removed) > 0
}

// Get returns the entity with the given ID.
//
// Postcondition: Returns (e, true) if found, or (nil, false) otherwise.
func (r *Registry) Get(id string) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	return e, ok
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// All returns a snapshot of every live entity in insertion order.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (r *Registry) All() []*Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entity, len(r.order))
	copy(out, r.order)
	return out
}

// OfKind returns a snapshot of active entities of kind k in insertion order.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (r *Registry) OfKind(k Kind) []*Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entity, 0)
	for _, e := range r.order {
		if e.Active && e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Enemies returns the active enemies.
func (r *Registry) Enemies() []*Entity { return r.OfKind(KindEnemy) }

// Obstacles returns the active obstacles.
func (r *Registry) Obstacles() []*Entity { return r.OfKind(KindObstacle) }

// Pickups returns the active pickups.
func (r *Registry) Pickups() []*Entity { return r.OfKind(KindPickup) }

// Positions returns the positions of every active entity.
func (r *Registry) Positions() []geom.Vec2 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]geom.Vec2, 0, len(r.order))
	for _, e := range r.order {
		if e.Active {
			out = append(out, e.Pos)
		}
	}
	return out
}

// RemoveInactive deletes every entity that is no longer active.
//
// Postcondition: Returns the removed entities in insertion order.
func (r *Registry) RemoveInactive() []*Entity {
	r.mu.Lock()
	removed := r.removeWhereLocked(func(e *Entity) bool { return !e.Active })
	r.mu.Unlock()
	r.notify(removed)
	return removed
}

// DespawnBeyond removes entities of kind k farther than dist from player.
//
// Postcondition: Returns the removed entities; each is inactive.
func (r *Registry) DespawnBeyond(k Kind, player geom.Vec2, dist float64) []*Entity {
	limit := dist * dist
	r.mu.Lock()
	removed := r.removeWhereLocked(func(e *Entity) bool {
		return e.Kind == k && geom.DistSq2D(e.Pos.X, e.Pos.Z, player.X, player.Z) > limit
	})
	r.mu.Unlock()
	r.notify(removed)
	return removed
}

// DespawnBehind removes entities of kind k whose Z is less than
// cameraZ - offset.
//
// Postcondition: Returns the removed entities; each is inactive.
func (r *Registry) DespawnBehind(k Kind, cameraZ, offset float64) []*Entity {
	r.mu.Lock()
	removed := r.removeWhereLocked(func(e *Entity) bool {
		return e.Kind == k && e.Pos.Z < cameraZ-offset
	})
	r.mu.Unlock()
	r.notify(removed)
	return removed
}

// Reset removes every entity.
//
// Postcondition: Len() == 0. Returns the removed entities.
func (r *Registry) Reset() []*Entity {
	r.mu.Lock()
	removed := r.removeWhereLocked(func(*Entity) bool { return true })
	r.mu.Unlock()
	r.notify(removed)
	return removed
}

// removeWhereLocked deletes matching entities, preserving the order of the rest.
//
// Precondition: r.mu must be held for writing.
func (r *Registry) removeWhereLocked(match func(*Entity) bool) []*Entity {
	var removed []*Entity
	kept := r.order[:0]
	for _, e := range r.order {
		if match(e) {
			e.Active = false
			delete(r.byID, e.ID)
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(r.order); i++ {
		r.order[i] = nil
	}
	r.order = kept
	return removed
}

func (r *Registry) notify(removed []*Entity) {
	if r.onRemove == nil {
		return
	}
	for _, e := range removed {
		r.onRemove(e)
	}
}
