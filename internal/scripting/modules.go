package scripting

import (
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/companion/internal/game/dice"
)

// RegisterModules registers the companion.* Lua table into L:
//
//	companion.roll(expr) -> total | nil, message
//	companion.log(message)
//
// Rolls made from scripts use the Manager's source directly and are not
// recorded in any roll history.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: companion global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(m.luaRoll))
	L.SetField(mod, "log", L.NewFunction(m.luaLog))
	L.SetGlobal("companion", mod)
}

func (m *Manager) luaRoll(L *lua.LState) int {
	expr := L.CheckString(1)
	res, err := dice.RollExpr(expr, m.src, time.Time{})
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LNumber(res.Total))
	return 1
}

func (m *Manager) luaLog(L *lua.LState) int {
	m.logger.Info("script", zap.String("message", L.CheckString(1)))
	return 0
}
