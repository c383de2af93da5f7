package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/mcgl/engine/internal/core/ecs"
	"github.com/mcgl/engine/internal/core/event"
	"github.com/mcgl/engine/internal/core/world"
)

// Engine wraps a single gopher-lua VM running entity behaviour scripts.
// Single-goroutine access only (game loop).
//
// A behaviour script is a .lua file returning a table. Its optional
// start(self), update(self, dt) and on_destroy(self) functions run with a
// per-entity self table whose metatable falls back to the behaviour, so
// fields written to self stay private to the entity.
type Engine struct {
	vm         *lua.LState
	log        *zap.Logger
	world      *world.World
	behaviours map[string]*lua.LTable // by script name, used as metatable
	instances  map[ecs.Entity]*instance
	handles    map[ecs.Entity]*lua.LUserData
	violation  error // contract violation caught by the VM, see guard
}

type instance struct {
	script    string
	behaviour *lua.LTable
	self      *lua.LTable
}

// NewEngine creates a Lua engine bound to w and loads every script in
// scriptsDir. A missing directory leaves the engine empty.
func NewEngine(w *world.World, scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{
		vm:         vm,
		log:        log,
		world:      w,
		behaviours: make(map[string]*lua.LTable),
		instances:  make(map[ecs.Entity]*instance),
		handles:    make(map[ecs.Entity]*lua.LUserData),
	}
	mt := vm.NewTypeMetatable(entityTypeName)
	vm.SetField(mt, "__tostring", vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(toEntity(L, 1).String()))
		return 1
	}))
	vm.PreloadModule("ecs", e.openModule)

	// An entity deleted from inside its own start() never reaches the
	// script system's exit callbacks.
	world.Subscribe(w, func(ev event.EntityDeleted) {
		delete(e.instances, ev.Entity)
		delete(e.handles, ev.Entity)
	})

	if scriptsDir != "" {
		if err := e.loadDir(scriptsDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory. The file stem names the
// behaviour.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		fn, err := e.vm.LoadFile(path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		name := strings.TrimSuffix(entry.Name(), ".lua")
		if err := e.define(name, fn); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path), zap.String("script", name))
	}
	return nil
}

// LoadString compiles src and registers the table it returns as behaviour
// name, replacing any earlier definition. Running instances keep the old
// behaviour until restarted.
func (e *Engine) LoadString(name, src string) error {
	fn, err := e.vm.LoadString(src)
	if err != nil {
		return fmt.Errorf("load script %s: %w", name, err)
	}
	if err := e.define(name, fn); err != nil {
		return fmt.Errorf("load script %s: %w", name, err)
	}
	return nil
}

func (e *Engine) define(name string, chunk *lua.LFunction) error {
	if err := e.pcall(lua.P{Fn: chunk, NRet: 1, Protect: true}); err != nil {
		return err
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	t, ok := result.(*lua.LTable)
	if !ok {
		return fmt.Errorf("script returned %s, want table", result.Type())
	}
	t.RawSetString("__index", t)
	e.behaviours[name] = t
	return nil
}

// Has reports whether a behaviour named name is loaded.
func (e *Engine) Has(name string) bool {
	_, ok := e.behaviours[name]
	return ok
}

// Scripts returns the loaded behaviour names, sorted.
func (e *Engine) Scripts() []string {
	names := make([]string, 0, len(e.behaviours))
	for n := range e.behaviours {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Running reports whether ent has a live script instance.
func (e *Engine) Running(ent ecs.Entity) bool {
	_, ok := e.instances[ent]
	return ok
}

// Start creates ent's instance of script and calls its start hook.
func (e *Engine) Start(ent ecs.Entity, script string) error {
	b, ok := e.behaviours[script]
	if !ok {
		return fmt.Errorf("start %s: unknown script %q", ent, script)
	}
	self := e.vm.NewTable()
	self.RawSetString("entity", e.entityValue(ent))
	self.RawSetString("script", lua.LString(script))
	e.vm.SetMetatable(self, b)

	inst := &instance{script: script, behaviour: b, self: self}
	e.instances[ent] = inst
	if err := e.call(inst, "start"); err != nil {
		return fmt.Errorf("start %s: %w", ent, err)
	}
	return nil
}

// Update calls ent's update hook with dt in seconds.
func (e *Engine) Update(ent ecs.Entity, dt time.Duration) error {
	inst, ok := e.instances[ent]
	if !ok {
		return nil
	}
	if err := e.call(inst, "update", lua.LNumber(dt.Seconds())); err != nil {
		return fmt.Errorf("update %s: %w", ent, err)
	}
	return nil
}

// Stop calls ent's on_destroy hook and drops the instance.
func (e *Engine) Stop(ent ecs.Entity) error {
	inst, ok := e.instances[ent]
	if !ok {
		return nil
	}
	delete(e.instances, ent)
	if err := e.call(inst, "on_destroy"); err != nil {
		return fmt.Errorf("stop %s: %w", ent, err)
	}
	return nil
}

// Field reads a value the script stored on ent's self table.
func (e *Engine) Field(ent ecs.Entity, key string) lua.LValue {
	inst, ok := e.instances[ent]
	if !ok {
		return lua.LNil
	}
	return e.vm.GetField(inst.self, key)
}

func (e *Engine) call(inst *instance, hook string, args ...lua.LValue) error {
	fn, ok := inst.behaviour.RawGetString(hook).(*lua.LFunction)
	if !ok {
		return nil
	}
	return e.pcall(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, append([]lua.LValue{inst.self}, args...)...)
}

// pcall runs a protected call. Script errors come back as errors, but a
// contract violation raised under a binding is re-panicked.
func (e *Engine) pcall(p lua.P, args ...lua.LValue) error {
	err := e.vm.CallByParam(p, args...)
	if v := e.violation; v != nil {
		e.violation = nil
		panic(v)
	}
	return err
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
