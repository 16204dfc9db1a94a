package scripting

import (
	"context"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

const (
	// EncounterSet names the script set holding encounter scripts.
	EncounterSet = "encounters"
	// EncounterHookName is the Lua global called to pick an encounter.
	EncounterHookName = "encounter"
)

// EncounterHook lets Lua scripts choose the encounter for a map cell by
// defining
//
//	function encounter(x, y, roll) return "combat" end
//
// where roll is in [1, 100]. Returning nil, a non-string, or raising an error
// defers to the built-in table.
type EncounterHook struct {
	mgr    *Manager
	logger *zap.Logger
}

// NewEncounterHook loads every *.lua file in dir into mgr's encounter set.
//
// Precondition: mgr must be non-nil; dir must be a readable directory.
// Postcondition: returns a ready hook or the load error.
func NewEncounterHook(mgr *Manager, dir string, instLimit int, logger *zap.Logger) (*EncounterHook, error) {
	if err := mgr.Load(EncounterSet, dir, instLimit); err != nil {
		return nil, err
	}
	return &EncounterHook{mgr: mgr, logger: logger}, nil
}

// Choose calls encounter(x, y, roll). ok is false when the script declines.
func (h *EncounterHook) Choose(ctx context.Context, x, y, roll int) (kind string, ok bool) {
	ret, err := h.mgr.CallHook(ctx, EncounterSet, EncounterHookName,
		lua.LNumber(x), lua.LNumber(y), lua.LNumber(roll))
	if err != nil {
		return "", false
	}
	s, isStr := ret.(lua.LString)
	if !isStr || s == "" {
		if ret != lua.LNil {
			h.logger.Warn("encounter hook returned non-string",
				zap.String("type", ret.Type().String()),
			)
		}
		return "", false
	}
	return string(s), true
}
