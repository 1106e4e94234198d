package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/roomcore/internal/game/random"
)

// RegisterModules registers all engine.* Lua tables into L:
//
//	engine.log.debug/info/warn(msg)
//	engine.random.int(n)      -- uniform integer in [1, n]
//	engine.random.chance(p)   -- true with probability p
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.newLogModule(L))
	L.SetField(engine, "random", m.newRandomModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) newLogModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	logAt := func(log func(string, ...zap.Field)) lua.LGFunction {
		return func(L *lua.LState) int {
			log("lua: " + L.CheckString(1))
			return 0
		}
	}
	L.SetField(mod, "debug", L.NewFunction(logAt(m.logger.Debug)))
	L.SetField(mod, "info", L.NewFunction(logAt(m.logger.Info)))
	L.SetField(mod, "warn", L.NewFunction(logAt(m.logger.Warn)))
	return mod
}

func (m *Manager) newRandomModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "int", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n <= 0 {
			L.ArgError(1, "n must be positive")
			return 0
		}
		L.Push(lua.LNumber(m.src.Intn(n) + 1))
		return 1
	}))
	L.SetField(mod, "chance", L.NewFunction(func(L *lua.LState) int {
		p := float64(L.CheckNumber(1))
		L.Push(lua.LBool(random.Chance(m.src, p)))
		return 1
	}))
	return mod
}
