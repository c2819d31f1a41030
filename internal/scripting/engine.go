package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for combat formulas.
// Single-goroutine access only (battle loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads the core and combat scripts under
// scriptsDir. Missing directories are skipped; the Go fallback formula then
// applies.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	for _, sub := range []string{"core", "combat"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}
	return e, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// CombatContext holds pre-packed data for one attack.
type CombatContext struct {
	AttackerAttack int32
	AttackerUnit   int32
	TargetDefense  int32
	TargetHealth   int32
	TargetUnit     int32
	Turn           int
}

// CombatResult is returned by the combat formula.
type CombatResult struct {
	IsHit  bool
	Damage int32
}

// FallbackAttack is the formula used when no script provides calc_attack:
// attack minus defense, never below 1.
func FallbackAttack(ctx CombatContext) CombatResult {
	return CombatResult{IsHit: true, Damage: max(1, ctx.AttackerAttack-ctx.TargetDefense)}
}

// HasFunc reports whether a global Lua function is defined.
func (e *Engine) HasFunc(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// CalcAttack calls the Lua calc_attack function. Script errors and missing
// functions fall back to FallbackAttack. A hit always deals at least 1.
func (e *Engine) CalcAttack(ctx CombatContext) CombatResult {
	fn := e.vm.GetGlobal("calc_attack")
	if fn == lua.LNil {
		return FallbackAttack(ctx)
	}

	t := e.vm.NewTable()

	atk := e.vm.NewTable()
	atk.RawSetString("attack", lua.LNumber(ctx.AttackerAttack))
	atk.RawSetString("unit_id", lua.LNumber(ctx.AttackerUnit))
	t.RawSetString("attacker", atk)

	tgt := e.vm.NewTable()
	tgt.RawSetString("defense", lua.LNumber(ctx.TargetDefense))
	tgt.RawSetString("health", lua.LNumber(ctx.TargetHealth))
	tgt.RawSetString("unit_id", lua.LNumber(ctx.TargetUnit))
	t.RawSetString("target", tgt)
	t.RawSetString("turn", lua.LNumber(ctx.Turn))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_attack error", zap.Error(err))
		return FallbackAttack(ctx)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua calc_attack returned non-table")
		return FallbackAttack(ctx)
	}

	res := CombatResult{
		IsHit:  rt.RawGetString("is_hit") != lua.LFalse,
		Damage: int32(lInt(rt, "damage")),
	}
	if !res.IsHit {
		res.Damage = 0
	} else if res.Damage < 1 {
		res.Damage = 1
	}
	return res
}

func lInt(t *lua.LTable, key string) int {
	return int(lua.LVAsNumber(t.RawGetString(key)))
}

// Close shuts down the VM.
func (e *Engine) Close() {
	e.vm.Close()
}
