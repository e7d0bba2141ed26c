package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/sundered/mud/internal/config"
	"github.com/sundered/mud/internal/game/dice"
)

// EffectTarget is the callback surface an effect script can act on. Both the
// item user and the declared target implement it.
type EffectTarget interface {
	// Name returns the display name of the entity.
	Name() string
	// Heal restores up to amount hit points.
	Heal(amount int)
	// Damage removes up to amount hit points.
	Damage(amount int)
	// Notify delivers a message to the entity, if it can receive one.
	Notify(msg string)
}

// Engine loads and runs item effect scripts. Each run gets a fresh sandboxed
// LState, so scripts cannot leak state between invocations.
type Engine struct {
	log       *zap.Logger
	scriptDir string
	instLimit int
	rolls     dice.Source
}

// NewEngine creates an effect script engine.
//
// Precondition: log and rolls must be non-nil.
func NewEngine(cfg config.ScriptingConfig, rolls dice.Source, log *zap.Logger) *Engine {
	return &Engine{
		log:       log,
		scriptDir: cfg.ScriptDir,
		instLimit: cfg.InstructionLimit,
		rolls:     rolls,
	}
}

// RunEffect executes the named script with user and target bound into the
// effect table. The script name is resolved under the configured script
// directory and must not escape it.
//
// Precondition: user and target must be non-nil.
// Postcondition: Returns an error if the script is missing, escapes the
// script directory, fails to run, or exceeds the instruction limit.
func (e *Engine) RunEffect(name string, user, target EffectTarget) error {
	path := filepath.Join(e.scriptDir, filepath.Clean("/"+name))
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading effect script %q: %w", name, err)
	}

	L := NewSandboxedState(e.instLimit)
	defer L.Close()
	e.registerEffectModule(L, user, target)

	if err := L.DoString(string(src)); err != nil {
		e.log.Warn("effect script failed",
			zap.String("script", name),
			zap.Error(err))
		return fmt.Errorf("running effect script %q: %w", name, err)
	}
	return nil
}

// registerEffectModule binds the effect.* table into L.
//
// Postcondition: The effect global exposes user_name, target_name, heal,
// damage, notify, and roll.
func (e *Engine) registerEffectModule(L *lua.LState, user, target EffectTarget) {
	resolve := func(who string) (EffectTarget, error) {
		switch who {
		case "user":
			return user, nil
		case "target":
			return target, nil
		default:
			return nil, fmt.Errorf("unknown effect subject %q", who)
		}
	}

	effect := L.NewTable()
	L.SetGlobal("effect", effect)

	L.SetField(effect, "user_name", lua.LString(user.Name()))
	L.SetField(effect, "target_name", lua.LString(target.Name()))

	L.SetField(effect, "heal", L.NewFunction(func(L *lua.LState) int {
		who, err := resolve(L.CheckString(1))
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		who.Heal(L.CheckInt(2))
		return 0
	}))

	L.SetField(effect, "damage", L.NewFunction(func(L *lua.LState) int {
		who, err := resolve(L.CheckString(1))
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		who.Damage(L.CheckInt(2))
		return 0
	}))

	L.SetField(effect, "notify", L.NewFunction(func(L *lua.LState) int {
		who, err := resolve(L.CheckString(1))
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		who.Notify(L.CheckString(2))
		return 0
	}))

	L.SetField(effect, "roll", L.NewFunction(func(L *lua.LState) int {
		result, err := dice.RollExpr(L.CheckString(1), e.rolls)
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(lua.LNumber(result))
		return 1
	}))
}
