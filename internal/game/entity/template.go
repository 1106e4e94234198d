// Package entity provides the canonical runtime record for enemies,
// obstacles and pickups, the YAML template catalog they are built from,
// and the live Registry.
package entity

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind distinguishes the three entity families.
type Kind string

// Entity kinds.
const (
	KindEnemy    Kind = "enemy"
	KindObstacle Kind = "obstacle"
	KindPickup   Kind = "pickup"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindEnemy, KindObstacle, KindPickup:
		return true
	default:
		return false
	}
}

// Behavior is the closed set of enemy AI behaviors.
type Behavior string

// Enemy behaviors. Roam chases while the player is visible and wanders otherwise.
const (
	BehaviorChase      Behavior = "chase"
	BehaviorWander     Behavior = "wander"
	BehaviorPatrol     Behavior = "patrol"
	BehaviorStationary Behavior = "stationary"
	BehaviorRoam       Behavior = "roam"
)

// Behaviors lists every Behavior.
var Behaviors = []Behavior{BehaviorChase, BehaviorWander, BehaviorPatrol, BehaviorStationary, BehaviorRoam}

// IsValid reports whether b is one of Behaviors.
func (b Behavior) IsValid() bool {
	for _, v := range Behaviors {
		if b == v {
			return true
		}
	}
	return false
}

// ParseBehavior converts a behavior tag into a Behavior. An empty tag means Roam.
//
// Postcondition: Returns an error for unknown tags.
func ParseBehavior(tag string) (Behavior, error) {
	if tag == "" {
		return BehaviorRoam, nil
	}
	b := Behavior(strings.ToLower(tag))
	if !b.IsValid() {
		return "", fmt.Errorf("unknown behavior %q", tag)
	}
	return b, nil
}

// Template defines a reusable entity archetype loaded from YAML.
type Template struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Kind Kind   `yaml:"kind"`
	// Behavior is the AI behavior tag; enemies only.
	Behavior Behavior `yaml:"behavior"`
	// SpeedMultiplier scales the controller's base speed. 0 means 1.
	SpeedMultiplier float64 `yaml:"speed_multiplier"`
	MaxHealth       int     `yaml:"max_health"`
	Radius          float64 `yaml:"radius"`
	// MinScore is the score at which this enemy starts appearing.
	MinScore int `yaml:"min_score"`
	// Weight is the relative selection weight among eligible templates. 0 means 1.
	Weight int `yaml:"weight"`
	// ExcludeThemes lists room themes this template never spawns in.
	ExcludeThemes []string `yaml:"exclude_themes"`
}

// Validate checks that the template satisfies basic invariants and
// normalizes an empty enemy behavior to Roam.
//
// Postcondition: Returns nil iff ID and Name are non-empty, Kind is valid,
// Radius > 0, MaxHealth >= 0, SpeedMultiplier >= 0, Weight >= 0, and an
// enemy's Behavior is valid.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("entity template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("entity template %q: name must not be empty", t.ID)
	}
	if !t.Kind.IsValid() {
		return fmt.Errorf("entity template %q: unknown kind %q", t.ID, t.Kind)
	}
	if t.Radius <= 0 {
		return fmt.Errorf("entity template %q: radius must be > 0", t.ID)
	}
	if t.MaxHealth < 0 {
		return fmt.Errorf("entity template %q: max_health must be >= 0", t.ID)
	}
	if t.SpeedMultiplier < 0 {
		return fmt.Errorf("entity template %q: speed_multiplier must be >= 0", t.ID)
	}
	if t.Weight < 0 {
		return fmt.Errorf("entity template %q: weight must be >= 0", t.ID)
	}
	if t.Kind == KindEnemy {
		b, err := ParseBehavior(string(t.Behavior))
		if err != nil {
			return fmt.Errorf("entity template %q: %w", t.ID, err)
		}
		t.Behavior = b
	}
	return nil
}

// Speed returns the effective speed multiplier.
func (t *Template) Speed() float64 {
	if t.SpeedMultiplier == 0 {
		return 1
	}
	return t.SpeedMultiplier
}

// SelectionWeight returns the effective selection weight.
func (t *Template) SelectionWeight() int {
	if t.Weight == 0 {
		return 1
	}
	return t.Weight
}

// AllowsTheme reports whether the template may spawn in a room with theme.
func (t *Template) AllowsTheme(theme string) bool {
	for _, ex := range t.ExcludeThemes {
		if ex == theme {
			return false
		}
	}
	return true
}

// yamlTemplateFile is the top-level YAML structure for template files. A
// file holds either a single template or a list under "templates".
type yamlTemplateFile struct {
	Templates []*Template `yaml:"templates"`
}

// LoadTemplatesFromBytes parses templates from raw YAML bytes. Both a
// single mapping and a "templates:" list are accepted.
//
// Postcondition: Returns validated templates, or an error on the first failure.
func LoadTemplatesFromBytes(data []byte) ([]*Template, error) {
	var file yamlTemplateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	templates := file.Templates
	if len(templates) == 0 {
		var single Template
		if err := yaml.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("parsing template YAML: %w", err)
		}
		templates = []*Template{&single}
	}
	for _, tmpl := range templates {
		if err := tmpl.Validate(); err != nil {
			return nil, err
		}
	}
	return templates, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading template dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		loaded, err := LoadTemplatesFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, loaded...)
	}
	return templates, nil
}

// Catalog indexes templates by ID.
type Catalog struct {
	byID map[string]*Template
}

// NewCatalog builds a Catalog.
//
// Postcondition: Returns an error on a nil template or a duplicate ID.
func NewCatalog(templates []*Template) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if t == nil {
			return nil, fmt.Errorf("entity catalog: nil template")
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("entity catalog: duplicate template ID %q", t.ID)
		}
		c.byID[t.ID] = t
	}
	return c, nil
}

// Get returns the template with the given ID.
//
// Postcondition: Returns (tmpl, true) if found, or (nil, false) otherwise.
func (c *Catalog) Get(id string) (*Template, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// ByKind returns every template of kind k ordered by ID.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (c *Catalog) ByKind(k Kind) []*Template {
	out := make([]*Template, 0)
	for _, t := range c.byID {
		if t.Kind == k {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDs returns the IDs of every template of kind k, ordered.
func (c *Catalog) IDs(k Kind) []string {
	tmpls := c.ByKind(k)
	out := make([]string, len(tmpls))
	for i, t := range tmpls {
		out[i] = t.ID
	}
	return out
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.byID) }
