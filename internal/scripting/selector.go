package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/roomcore/internal/game/spawn"
	"github.com/cory-johannsen/roomcore/internal/game/world"
)

// SelectEnemyHook is the Lua global the selector calls as
// select_enemy(theme, score, grid_x, grid_z). It returns an enemy type tag.
const SelectEnemyHook = "select_enemy"

// Selector is a spawn.EnemyTypeSelector backed by a Lua hook. When the
// hook is missing, fails, or returns anything but a non-empty string, the
// fallback selector decides.
type Selector struct {
	mgr      *Manager
	scope    string
	fallback spawn.EnemyTypeSelector
}

// NewSelector creates a Selector calling SelectEnemyHook in scope.
//
// Precondition: mgr and fallback must be non-nil.
func NewSelector(mgr *Manager, scope string, fallback spawn.EnemyTypeSelector) *Selector {
	return &Selector{mgr: mgr, scope: scope, fallback: fallback}
}

// SelectEnemyType implements spawn.EnemyTypeSelector.
func (s *Selector) SelectEnemyType(room *world.Room, score int) string {
	theme := ""
	gx, gz := 0, 0
	if room != nil {
		theme, gx, gz = room.Theme, room.GridX, room.GridZ
	}
	ret := s.mgr.CallHook(s.scope, SelectEnemyHook,
		lua.LString(theme), lua.LNumber(score), lua.LNumber(gx), lua.LNumber(gz))
	if str, ok := ret.(lua.LString); ok && str != "" {
		return string(str)
	}
	return s.fallback.SelectEnemyType(room, score)
}
