package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlLayoutFile is the top-level YAML structure for layout files.
type yamlLayoutFile struct {
	Layout yamlLayout `yaml:"layout"`
}

// yamlLayout is the YAML representation of a room layout.
type yamlLayout struct {
	Name  string     `yaml:"name"`
	Rooms []yamlRoom `yaml:"rooms"`
}

// yamlRoom is the YAML representation of one room.
type yamlRoom struct {
	X     int      `yaml:"x"`
	Z     int      `yaml:"z"`
	Theme string   `yaml:"theme"`
	Doors []string `yaml:"doors"`
}

// RoomSpec describes one room of a hand-authored layout.
type RoomSpec struct {
	X     int
	Z     int
	Theme string
	Doors []Direction
}

// Layout is a hand-authored set of rooms.
type Layout struct {
	Name  string
	Rooms []RoomSpec
}

// Validate checks layout invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (l *Layout) Validate() error {
	if len(l.Rooms) == 0 {
		return fmt.Errorf("layout %q: must contain at least one room", l.Name)
	}
	seen := make(map[RoomKey]bool, len(l.Rooms))
	for _, r := range l.Rooms {
		key := RoomKey{X: r.X, Z: r.Z}
		if seen[key] {
			return fmt.Errorf("layout %q: duplicate room at %s", l.Name, key)
		}
		seen[key] = true
		for _, d := range r.Doors {
			if !d.IsValid() {
				return fmt.Errorf("layout %q: room %s: unknown door direction %q", l.Name, key, d)
			}
		}
	}
	return nil
}

// Apply adds every room of the layout to g.
//
// Precondition: l must be valid.
// Postcondition: Returns the number of rooms that were newly inserted.
func (l *Layout) Apply(g *Grid) int {
	added := 0
	for _, r := range l.Rooms {
		before := g.Len()
		g.AddRoom(r.X, r.Z, r.Theme, r.Doors...)
		if g.Len() > before {
			added++
		}
	}
	return added
}

// LoadLayoutFromFile reads and validates a layout YAML file.
//
// Precondition: path must point to a valid YAML layout file.
// Postcondition: Returns a validated Layout or a non-nil error.
func LoadLayoutFromFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout file %s: %w", path, err)
	}
	return LoadLayoutFromBytes(data)
}

// LoadLayoutFromBytes parses and validates a layout from YAML bytes.
//
// Postcondition: Returns a validated Layout or a non-nil error.
func LoadLayoutFromBytes(data []byte) (*Layout, error) {
	var file yamlLayoutFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing layout YAML: %w", err)
	}

	layout := convertYAMLLayout(file.Layout)
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("validating layout: %w", err)
	}
	return layout, nil
}

// convertYAMLLayout converts the parsed YAML structures into domain types.
func convertYAMLLayout(yl yamlLayout) *Layout {
	layout := &Layout{
		Name:  yl.Name,
		Rooms: make([]RoomSpec, 0, len(yl.Rooms)),
	}
	for _, yr := range yl.Rooms {
		spec := RoomSpec{X: yr.X, Z: yr.Z, Theme: yr.Theme}
		for _, d := range yr.Doors {
			spec.Doors = append(spec.Doors, Direction(d))
		}
		layout.Rooms = append(layout.Rooms, spec)
	}
	return layout
}
