package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/roomcore/internal/game/random"
)

// globalScope is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no scope VM is found.
const globalScope = "__global__"

// vm is one sandboxed LState. An LState is single-threaded, so every
// execution holds mu.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per script scope and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same scope are
// serialized; different scopes run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	src    random.Source
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: src and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scopes loaded.
func NewManager(src random.Source, logger *zap.Logger) *Manager {
	if src == nil {
		panic("scripting.NewManager: src must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		src:    src,
		logger: logger,
	}
}

// LoadDir creates a sandboxed VM for scope, registers all engine.* modules,
// then executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: scope must be non-empty; scriptDir must be a readable directory.
// Postcondition: The scope VM is registered, replacing any earlier one;
// returns an error on Lua load failure.
func (m *Manager) LoadDir(scope, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, scope, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	return m.load(scope, instLimit, func(L *lua.LState) error {
		for _, path := range luaFiles {
			if err := L.DoFile(path); err != nil {
				return fmt.Errorf("scripting: loading %q for %q: %w", path, scope, err)
			}
		}
		return nil
	})
}

// LoadFile loads a single script file into scope.
//
// Precondition: scope must be non-empty.
// Postcondition: As for LoadDir.
func (m *Manager) LoadFile(scope, path string, instLimit int) error {
	return m.load(scope, instLimit, func(L *lua.LState) error {
		if err := L.DoFile(path); err != nil {
			return fmt.Errorf("scripting: loading %q for %q: %w", path, scope, err)
		}
		return nil
	})
}

// LoadString loads inline Lua source into scope.
//
// Precondition: scope must be non-empty.
// Postcondition: As for LoadDir.
func (m *Manager) LoadString(scope, source string, instLimit int) error {
	return m.load(scope, instLimit, func(L *lua.LState) error {
		if err := L.DoString(source); err != nil {
			return fmt.Errorf("scripting: loading source for %q: %w", scope, err)
		}
		return nil
	})
}

// LoadGlobal loads scriptDir into the shared VM used as the CallHook fallback.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.LoadDir(globalScope, scriptDir, instLimit)
}

func (m *Manager) load(scope string, instLimit int, run func(*lua.LState) error) error {
	if scope == "" {
		return fmt.Errorf("scripting: scope must not be empty")
	}
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	err := run(L)
	L.RemoveContext()
	cancel()
	if err != nil {
		L.Close()
		return err
	}

	m.mu.Lock()
	old := m.vms[scope]
	m.vms[scope] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()
	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.logger.Debug("scripting: scope loaded", zap.String("scope", scope))
	return nil
}

// Has reports whether scope has a VM of its own.
func (m *Manager) Has(scope string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[scope]
	return ok
}

// CallHook calls the named Lua global function in scope's VM. If the scope
// has no VM, the global VM is tried as a fallback. Returns LNil if
// the hook is not defined or no VM exists. Lua runtime errors, including an
// exhausted instruction budget, are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) lua.LValue {
	m.mu.RLock()
	v, ok := m.vms[scope]
	if !ok {
		v = m.vms[globalScope]
	}
	m.mu.RUnlock()

	if v == nil {
		m.logger.Info("scripting: no VM for scope",
			zap.String("scope", scope),
			zap.String("hook", hook),
		)
		return lua.LNil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	L := v.L
	if L.IsClosed() {
		return lua.LNil
	}

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil
	}

	var ret lua.LValue = lua.LNil
	err := withLimit(L, v.limit, func() error {
		if err := L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, args...); err != nil {
			return err
		}
		ret = L.Get(-1)
		L.Pop(1)
		return nil
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil
	}
	return ret
}

// Close releases every VM.
//
// Postcondition: No scopes remain; later CallHook calls return LNil.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
	}
}
