package scripting

import (
	"embed"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/assemblyline/core/internal/ledger"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

//go:embed lua/*.lua
var builtin embed.FS

// Engine wraps a single gopher-lua VM holding the economy formulas. It
// implements ledger.Rules. Single-goroutine access only (session loop).
//
// Every call falls back to the matching fixed rule when the Lua function is
// missing or fails, so a broken script degrades to the stock economy instead
// of stalling the session.
type Engine struct {
	vm       *lua.LState
	log      *zap.Logger
	fallback ledger.FixedRules
}

var _ ledger.Rules = (*Engine)(nil)

func newEngine(fallback ledger.FixedRules, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	return &Engine{vm: vm, log: log, fallback: fallback}
}

// NewEngine loads the built-in rules, then every .lua file in scriptsDir so
// local scripts can override them. A missing scriptsDir is not an error.
func NewEngine(scriptsDir string, fallback ledger.FixedRules, log *zap.Logger) (*Engine, error) {
	e := newEngine(fallback, log)
	if err := e.loadBuiltin(); err != nil {
		e.Close()
		return nil, err
	}
	if scriptsDir != "" {
		if err := e.loadDir(scriptsDir); err != nil {
			e.Close()
			return nil, fmt.Errorf("load economy scripts: %w", err)
		}
	}
	return e, nil
}

// NewEngineFromSource builds an engine from a single script, without the
// built-in rules.
func NewEngineFromSource(src string, fallback ledger.FixedRules, log *zap.Logger) (*Engine, error) {
	e := newEngine(fallback, log)
	if err := e.vm.DoString(src); err != nil {
		e.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	return e, nil
}

func (e *Engine) loadBuiltin() error {
	entries, err := builtin.ReadDir("lua")
	if err != nil {
		return fmt.Errorf("read builtin scripts: %w", err)
	}
	for _, entry := range entries {
		src, err := builtin.ReadFile("lua/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read builtin %s: %w", entry.Name(), err)
		}
		if err := e.vm.DoString(string(src)); err != nil {
			return fmt.Errorf("load builtin %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// loadDir loads all .lua files in a directory.
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

func (e *Engine) Close() {
	e.vm.Close()
}

// WastePenalty calls Lua calc_waste_penalty(assembled).
func (e *Engine) WastePenalty(assembled int) int64 {
	if v, ok := e.callIntFunc("calc_waste_penalty", assembled); ok {
		return v
	}
	return e.fallback.WastePenalty(assembled)
}

// AssemblyReward calls Lua calc_assembly_reward(assembled).
func (e *Engine) AssemblyReward(assembled int) int64 {
	if v, ok := e.callIntFunc("calc_assembly_reward", assembled); ok {
		return v
	}
	return e.fallback.AssemblyReward(assembled)
}

// SpawnCost calls Lua calc_spawn_cost().
func (e *Engine) SpawnCost() int64 {
	if v, ok := e.callIntFunc("calc_spawn_cost"); ok {
		return v
	}
	return e.fallback.SpawnCost()
}

func (e *Engine) callIntFunc(name string, args ...int) (int64, bool) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return 0, false
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua function returned a non-number",
			zap.String("func", name),
			zap.String("type", result.Type().String()),
		)
		return 0, false
	}
	// Every rule yields an amount; the ledger applies the sign.
	if n < 0 || n != lua.LNumber(math.Trunc(float64(n))) {
		e.log.Warn("lua function returned an invalid amount",
			zap.String("func", name),
			zap.Float64("value", float64(n)),
		)
		return 0, false
	}
	return int64(n), true
}
