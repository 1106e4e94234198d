// Package world provides the room grid: rooms keyed by integer grid
// coordinates, the grid/world coordinate transform, and door adjacency.
package world

import (
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// Direction is one of the four compass directions a door can face.
type Direction string

// Compass directions. North is +Z, east is +X.
const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// CardinalDirections lists the four compass directions in a fixed order.
var CardinalDirections = []Direction{North, South, East, West}

// IsValid reports whether d is one of the four compass directions.
func (d Direction) IsValid() bool {
	switch d {
	case North, South, East, West:
		return true
	default:
		return false
	}
}

// Opposite returns the direction facing back across the same wall.
// For an invalid direction, it returns an empty string.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	default:
		return ""
	}
}

// Delta returns the grid offset of the neighbor in direction d.
//
// Postcondition: Returns (0, 0) for an invalid direction.
func (d Direction) Delta() (dx, dz int) {
	switch d {
	case North:
		return 0, 1
	case South:
		return 0, -1
	case East:
		return 1, 0
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

// DirectionFromDelta maps a unit grid offset back to its direction.
//
// Postcondition: Returns ("", false) when (dx, dz) is not a single orthogonal step.
func DirectionFromDelta(dx, dz int) (Direction, bool) {
	switch {
	case dx == 0 && dz == 1:
		return North, true
	case dx == 0 && dz == -1:
		return South, true
	case dx == 1 && dz == 0:
		return East, true
	case dx == -1 && dz == 0:
		return West, true
	default:
		return "", false
	}
}

// ParseDirection converts a direction token into a Direction.
//
// Postcondition: Returns an error for anything other than north, south, east or west.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.IsValid() {
		return "", fmt.Errorf("unknown direction %q", s)
	}
	return d, nil
}

// RoomKey identifies a grid cell.
type RoomKey struct {
	X int
	Z int
}

// String returns the key as "x,z".
func (k RoomKey) String() string {
	return fmt.Sprintf("%d,%d", k.X, k.Z)
}

// Room is one cell of the grid.
//
// Invariant: a door exists on a wall only if it was assigned when the room
// was created. Doors are not mirrored onto the neighbor automatically.
type Room struct {
	// GridX and GridZ are the room's integer grid coordinates.
	GridX int
	GridZ int
	// Theme is an opaque tag consumed by visual and spawn-exclusion logic.
	Theme string
	// Doors is the set of walls that carry a door.
	Doors mapset.Set[Direction]
	// Visited is set once the player has entered the room.
	Visited bool
}

// NewRoom creates a room with the given doors.
//
// Precondition: every door must be a valid Direction.
func NewRoom(gx, gz int, theme string, doors ...Direction) *Room {
	r := &Room{
		GridX: gx,
		GridZ: gz,
		Theme: theme,
		Doors: mapset.New[Direction](),
	}
	for _, d := range doors {
		r.Doors.Put(d)
	}
	return r
}

// Key returns the room's grid key.
func (r *Room) Key() RoomKey {
	return RoomKey{X: r.GridX, Z: r.GridZ}
}

// HasDoor reports whether the room declares a door in direction d.
func (r *Room) HasDoor(d Direction) bool {
	return r.Doors.Has(d)
}

// DoorList returns the room's doors in CardinalDirections order.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (r *Room) DoorList() []Direction {
	out := make([]Direction, 0, r.Doors.Size())
	for _, d := range CardinalDirections {
		if r.Doors.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// sortRooms orders rooms by GridZ then GridX so enumeration is deterministic.
func sortRooms(rooms []*Room) {
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].GridZ != rooms[j].GridZ {
			return rooms[i].GridZ < rooms[j].GridZ
		}
		return rooms[i].GridX < rooms[j].GridX
	})
}
