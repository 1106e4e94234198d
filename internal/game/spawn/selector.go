package spawn

import (
	"github.com/cory-johannsen/roomcore/internal/game/entity"
	"github.com/cory-johannsen/roomcore/internal/game/random"
	"github.com/cory-johannsen/roomcore/internal/game/world"
)

// EnemyTypeSelector chooses the enemy type tag to place in a room. An
// empty result means no enemy is placed.
type EnemyTypeSelector interface {
	SelectEnemyType(room *world.Room, score int) string
}

// FuncSelector adapts a plain function to EnemyTypeSelector.
type FuncSelector func(room *world.Room, score int) string

// SelectEnemyType calls f.
func (f FuncSelector) SelectEnemyType(room *world.Room, score int) string {
	return f(room, score)
}

// Fixed returns a selector that always yields enemyType.
func Fixed(enemyType string) EnemyTypeSelector {
	return FuncSelector(func(*world.Room, int) string { return enemyType })
}

// WeightedSelector picks among the catalog's enemy templates whose
// MinScore has been reached and which allow the room's theme, weighted by
// SelectionWeight.
type WeightedSelector struct {
	templates []*entity.Template
	src       random.Source
	fallback  string
}

// NewWeightedSelector builds a WeightedSelector over every enemy template
// in catalog. fallback is returned when no template is eligible.
//
// Precondition: catalog and src must be non-nil.
func NewWeightedSelector(catalog *entity.Catalog, src random.Source, fallback string) *WeightedSelector {
	return &WeightedSelector{
		templates: catalog.ByKind(entity.KindEnemy),
		src:       src,
		fallback:  fallback,
	}
}

// SelectEnemyType implements EnemyTypeSelector.
//
// Postcondition: Returns the ID of an eligible template, or the fallback.
func (s *WeightedSelector) SelectEnemyType(room *world.Room, score int) string {
	theme := ""
	if room != nil {
		theme = room.Theme
	}
	total := 0
	eligible := make([]*entity.Template, 0, len(s.templates))
	for _, t := range s.templates {
		if t.MinScore > score || !t.AllowsTheme(theme) {
			continue
		}
		eligible = append(eligible, t)
		total += t.SelectionWeight()
	}
	if total == 0 {
		return s.fallback
	}
	roll := s.src.Intn(total)
	for _, t := range eligible {
		roll -= t.SelectionWeight()
		if roll < 0 {
			return t.ID
		}
	}
	return eligible[len(eligible)-1].ID
}
