package world

import (
	"fmt"
	"math"
	"sync"

	"github.com/cory-johannsen/roomcore/internal/game/geom"
)

// Grid is the sparse registry of rooms keyed by grid coordinates.
// All methods are safe for concurrent use; after generation the grid is
// read-heavy and only Visited mutates.
type Grid struct {
	mu        sync.RWMutex
	unit      float64
	doorWidth float64
	rooms     map[RoomKey]*Room
}

// NewGrid creates an empty grid.
//
// Precondition: unit > 0; 0 < doorWidth < unit.
// Postcondition: Returns an empty Grid or an error describing the bad dimension.
func NewGrid(unit, doorWidth float64) (*Grid, error) {
	if unit <= 0 {
		return nil, fmt.Errorf("room unit must be > 0, got %v", unit)
	}
	if doorWidth <= 0 || doorWidth >= unit {
		return nil, fmt.Errorf("door width must be in (0, %v), got %v", unit, doorWidth)
	}
	return &Grid{
		unit:      unit,
		doorWidth: doorWidth,
		rooms:     make(map[RoomKey]*Room),
	}, nil
}

// Unit returns the world-space edge length of one room.
func (g *Grid) Unit() float64 { return g.unit }

// DoorWidth returns the world-space width of a door aperture.
func (g *Grid) DoorWidth() float64 { return g.doorWidth }

// AddRoom inserts a room at (gx, gz), or returns the room already there.
// An existing room keeps its original theme and doors.
//
// Postcondition: GetRoom(gx, gz) returns the returned room.
func (g *Grid) AddRoom(gx, gz int, theme string, doors ...Direction) *Room {
	key := RoomKey{X: gx, Z: gz}
	g.mu.Lock()
	defer g.mu.Unlock()
	if r, ok := g.rooms[key]; ok {
		return r
	}
	r := NewRoom(gx, gz, theme, doors...)
	g.rooms[key] = r
	return r
}

// GetRoom returns the room at (gx, gz).
//
// Postcondition: Returns (room, true) if found, or (nil, false) otherwise.
func (g *Grid) GetRoom(gx, gz int) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[RoomKey{X: gx, Z: gz}]
	return r, ok
}

// Room returns the room with the given key.
func (g *Grid) Room(key RoomKey) (*Room, bool) {
	return g.GetRoom(key.X, key.Z)
}

// GetRoomAtWorld returns the room containing world point (x, z).
//
// Postcondition: Returns (nil, false) for points outside every known room.
func (g *Grid) GetRoomAtWorld(x, z float64) (*Room, bool) {
	gx, gz := g.WorldToGrid(x, z)
	return g.GetRoom(gx, gz)
}

// GridToWorld returns the world-space center of cell (gx, gz).
func (g *Grid) GridToWorld(gx, gz int) (x, z float64) {
	return float64(gx)*g.unit + g.unit/2, float64(gz)*g.unit + g.unit/2
}

// WorldToGrid returns the cell containing world point (x, z). Cells are
// half-open: [gx*unit, (gx+1)*unit).
func (g *Grid) WorldToGrid(x, z float64) (gx, gz int) {
	return int(math.Floor(x / g.unit)), int(math.Floor(z / g.unit))
}

// Center returns the world-space center of room.
func (g *Grid) Center(room *Room) geom.Vec2 {
	x, z := g.GridToWorld(room.GridX, room.GridZ)
	return geom.V2(x, z)
}

// Bounds returns the world-space square covered by room.
func (g *Grid) Bounds(room *Room) geom.Rect {
	minX := float64(room.GridX) * g.unit
	minZ := float64(room.GridZ) * g.unit
	return geom.Rect{MinX: minX, MinZ: minZ, MaxX: minX + g.unit, MaxZ: minZ + g.unit}
}

// DoorCenter returns the midpoint of room's wall in direction d, which is
// where a door on that wall is centered.
func (g *Grid) DoorCenter(room *Room, d Direction) geom.Vec2 {
	c := g.Center(room)
	dx, dz := d.Delta()
	half := g.unit / 2
	return geom.V2(c.X+float64(dx)*half, c.Z+float64(dz)*half)
}

// Neighbor returns the room adjacent to room in direction d, if present.
// It does not consult doors.
func (g *Grid) Neighbor(room *Room, d Direction) (*Room, bool) {
	if room == nil || !d.IsValid() {
		return nil, false
	}
	dx, dz := d.Delta()
	return g.GetRoom(room.GridX+dx, room.GridZ+dz)
}

// Connected returns the neighbor in direction d when the pair is
// traversable: room declares a door toward d and the neighbor declares
// the opposite door.
func (g *Grid) Connected(room *Room, d Direction) (*Room, bool) {
	if room == nil || !room.HasDoor(d) {
		return nil, false
	}
	n, ok := g.Neighbor(room, d)
	if !ok || !n.HasDoor(d.Opposite()) {
		return nil, false
	}
	return n, true
}

// ConnectedNeighbors returns every neighbor reachable through a door pair,
// in CardinalDirections order.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (g *Grid) ConnectedNeighbors(room *Room) []*Room {
	out := make([]*Room, 0, 4)
	for _, d := range CardinalDirections {
		if n, ok := g.Connected(room, d); ok {
			out = append(out, n)
		}
	}
	return out
}

// GenerateGrid adds a width x height lattice of rooms with corner (0, 0)
// and wires doors between every pair of grid-adjacent cells in it. Edge
// cells receive doors only toward existing neighbors. Cells that already
// hold a room are left untouched.
//
// A non-positive width or height yields an empty lattice.
//
// Postcondition: Returns the rooms of the lattice ordered by (gz, gx).
func (g *Grid) GenerateGrid(width, height int, theme string) []*Room {
	width, height = max(width, 0), max(height, 0)
	inLattice := func(x, z int) bool {
		return x >= 0 && x < width && z >= 0 && z < height
	}
	out := make([]*Room, 0, width*height)
	for z := 0; z < height; z++ {
		for x := 0; x < width; x++ {
			var doors []Direction
			for _, d := range CardinalDirections {
				dx, dz := d.Delta()
				if inLattice(x+dx, z+dz) {
					doors = append(doors, d)
				}
			}
			out = append(out, g.AddRoom(x, z, theme, doors...))
		}
	}
	return out
}

// SetTheme changes the theme of the room at key.
//
// Postcondition: Returns false if no room exists at key.
func (g *Grid) SetTheme(key RoomKey, theme string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.rooms[key]
	if !ok {
		return false
	}
	r.Theme = theme
	return true
}

// MarkVisited flags room as visited.
//
// Postcondition: Returns true only on the first visit.
func (g *Grid) MarkVisited(room *Room) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if room.Visited {
		return false
	}
	room.Visited = true
	return true
}

// Rooms returns every room ordered by (gz, gx).
//
// Postcondition: Returns a non-nil slice; may be empty.
func (g *Grid) Rooms() []*Room {
	g.mu.RLock()
	out := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, r)
	}
	g.mu.RUnlock()
	sortRooms(out)
	return out
}

// VisitedRooms returns every visited room ordered by (gz, gx).
//
// Postcondition: Returns a non-nil slice; may be empty.
func (g *Grid) VisitedRooms() []*Room {
	g.mu.RLock()
	out := make([]*Room, 0)
	for _, r := range g.rooms {
		if r.Visited {
			out = append(out, r)
		}
	}
	g.mu.RUnlock()
	sortRooms(out)
	return out
}

// Len returns the number of rooms in the grid.
func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
