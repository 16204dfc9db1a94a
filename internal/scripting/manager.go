package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/companion/internal/game/dice"
)

// vm is one sandboxed LState. LStates are single-threaded; mu serializes
// every load and call.
type vm struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	closed bool
}

func (v *vm) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.closed {
		v.closed = true
		v.L.Close()
	}
}

// Manager owns one sandboxed LState per script set and exposes hook dispatch.
//
// Manager is safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	src    dice.Source
	logger *zap.Logger
}

// NewManager creates a Manager. src backs the companion.roll Lua function.
//
// Precondition: src and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no script sets.
func NewManager(src dice.Source, logger *zap.Logger) *Manager {
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

// Load creates a sandboxed VM for set, registers the companion.* module, then
// executes every *.lua file in scriptDir in lexicographic order. Each file
// runs with its own instruction budget. An existing VM for set is replaced
// only when every file loads.
//
// Precondition: set must be non-empty; scriptDir must be a readable directory.
// Postcondition: returns an error on read or Lua load failure and leaves any
// previous VM for set in place.
func (m *Manager) Load(set, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, set, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L, cancel := NewSandboxedState(instLimit)
	cancel()
	m.RegisterModules(L)
	for _, path := range luaFiles {
		done := budget(context.Background(), L, instLimit)
		err := L.DoFile(path)
		done()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, set, err)
		}
	}

	m.mu.Lock()
	old := m.vms[set]
	m.vms[set] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()
	if old != nil {
		old.close()
	}
	m.logger.Info("scripts loaded",
		zap.String("set", set),
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Loaded reports whether a VM exists for set.
func (m *Manager) Loaded(set string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[set]
	return ok
}

// CallHook calls the named Lua global function in set's VM under a fresh
// instruction budget bounded by ctx. Returns (LNil, nil) if the hook is not
// defined or no VM exists. Lua runtime errors, including budget exhaustion,
// are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(ctx context.Context, set, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v := m.vms[set]
	m.mu.RUnlock()

	if v == nil {
		m.logger.Debug("no scripts loaded",
			zap.String("set", set),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return lua.LNil, nil
	}

	fn := v.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	done := budget(ctx, v.L, v.limit)
	defer done()
	if err := v.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("lua runtime error",
			zap.String("set", set),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

// Close releases every VM. Later CallHook calls return LNil.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.close()
	}
}
