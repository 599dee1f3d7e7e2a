package scripting

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// MaxHookDelta bounds the magnitude of a health delta returned by EffectTick.
const MaxHookDelta = math.MaxInt32

// Manager owns one sandboxed LState holding every effect hook script and
// dispatches hook calls into it. A mutex serializes calls because an LState
// is single-threaded.
type Manager struct {
	mu     sync.Mutex
	state  *lua.LState
	cancel context.CancelFunc
	limit  int
	logger *zap.Logger
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// LoadDir creates a fresh sandboxed VM, registers the engine module, then
// executes every *.lua file in scriptDir in lexicographic order. A previously
// loaded VM is replaced only if loading succeeds. instLimit caps the opcodes
// of loading and of each later hook call separately.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Returns an error on read or Lua load failure.
func (m *Manager) LoadDir(scriptDir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	m.closeLocked()
	m.state = L
	m.cancel = cancel
	m.limit = instLimit
	m.mu.Unlock()

	m.logger.Info("effect scripts loaded",
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Close releases the VM. The Manager may be reloaded with LoadDir afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *Manager) closeLocked() {
	if m.state == nil {
		return
	}
	m.cancel()
	m.state.Close()
	m.state = nil
	m.cancel = nil
}

// CallHook calls the named Lua global function. Returns (LNil, nil) if no
// scripts are loaded or the hook is undefined. Lua runtime errors are logged
// at Warn level and returned.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == nil {
		m.logger.Info("scripting: no scripts loaded", zap.String("hook", hook))
		return lua.LNil, nil
	}
	L := m.state

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	limit := m.limit
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := newCountingContext(limit)
	defer cancel()
	L.SetContext(ctx)

	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, fmt.Errorf("scripting: hook %q: %w", hook, err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// EffectTick calls hook(character_id, effect_id, remaining) and returns its
// numeric result truncated to an int as a health delta. A nil or missing
// return value is a zero delta. Non-finite results and values outside
// [-MaxHookDelta, MaxHookDelta] are rejected.
func (m *Manager) EffectTick(hook, characterID, effectID string, remaining int) (int, error) {
	ret, err := m.CallHook(hook, lua.LString(characterID), lua.LString(effectID), lua.LNumber(remaining))
	if err != nil {
		return 0, err
	}
	switch v := ret.(type) {
	case lua.LNumber:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("scripting: hook %q returned non-finite number %v", hook, f)
		}
		if math.Abs(f) > MaxHookDelta {
			return 0, fmt.Errorf("scripting: hook %q returned %v, outside +/-%d", hook, f, MaxHookDelta)
		}
		return int(f), nil
	case *lua.LNilType:
		return 0, nil
	default:
		return 0, fmt.Errorf("scripting: hook %q returned %s, want number", hook, ret.Type())
	}
}
