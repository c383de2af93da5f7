package scripting

import (
	"github.com/rotisserie/eris"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/mcgl/engine/internal/component"
	"github.com/mcgl/engine/internal/core/ecs"
	"github.com/mcgl/engine/internal/core/world"
)

// Attach gives e a Script component running script. Scripted entities need
// a Transform, so one is added at the origin if e has none.
func Attach(w *world.World, e ecs.Entity, script string) *component.Script {
	if !world.HasComponent[component.Transform](w, e) {
		world.AddComponent(w, e, component.NewTransform(component.Vec3{}))
	}
	return world.AddComponent(w, e, component.Script{Name: script})
}

// openModule builds the table returned by require("ecs").
func (e *Engine) openModule(L *lua.LState) int {
	funcs := map[string]lua.LGFunction{
		"make_entity":       e.luaMakeEntity,
		"destroy":           e.luaDestroy,
		"destroy_immediate": e.luaDestroyImmediate,
		"is_alive":          e.luaIsAlive,
		"name":              e.luaName,
		"find":              e.luaFind,
		"get_position":      e.luaGetPosition,
		"set_position":      e.luaSetPosition,
		"has_script":        e.luaHasScript,
		"attach":            e.luaAttach,
		"emit":              e.luaEmit,
		"log":               e.luaLog,
	}
	for name, fn := range funcs {
		funcs[name] = e.guard(fn)
	}
	L.Push(L.SetFuncs(L.NewTable(), funcs))
	return 1
}

// guard records contract violations raised below fn so pcall can re-raise
// them once the protected Lua call has unwound.
func (e *Engine) guard(fn lua.LGFunction) lua.LGFunction {
	return func(L *lua.LState) int {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok && eris.Is(err, ecs.ErrContractViolation) {
					e.violation = err
				}
				panic(r)
			}
		}()
		return fn(L)
	}
}

const entityTypeName = "ecs.entity"

// Entities cross into Lua as userdata. Each handle maps to one value, so
// == compares handles and no bits are lost to float64.
func (e *Engine) entityValue(ent ecs.Entity) *lua.LUserData {
	if ud, ok := e.handles[ent]; ok {
		return ud
	}
	ud := e.vm.NewUserData()
	ud.Value = ent
	e.vm.SetMetatable(ud, e.vm.GetTypeMetatable(entityTypeName))
	e.handles[ent] = ud
	return ud
}

func toEntity(L *lua.LState, n int) ecs.Entity {
	ent, ok := L.CheckUserData(n).Value.(ecs.Entity)
	if !ok {
		L.ArgError(n, "entity expected")
	}
	return ent
}

func (e *Engine) checkEntity(L *lua.LState, n int) ecs.Entity {
	ent := toEntity(L, n)
	if !e.world.IsAlive(ent) {
		L.ArgError(n, "dead or stale entity")
	}
	return ent
}

// checkMutable also rejects entities that are mid-destruction.
func (e *Engine) checkMutable(L *lua.LState, n int) ecs.Entity {
	ent := e.checkEntity(L, n)
	if e.world.IsDying(ent) {
		L.ArgError(n, "entity is being destroyed")
	}
	return ent
}

func (e *Engine) luaMakeEntity(L *lua.LState) int {
	if e.world.Count() >= e.world.Capacity() {
		L.RaiseError("entity limit reached")
	}
	ent := e.world.MakeEntity(L.OptString(1, ""))
	L.Push(e.entityValue(ent))
	return 1
}

// destroy defers deletion to the end of the tick.
func (e *Engine) luaDestroy(L *lua.LState) int {
	e.world.MarkForDestruction(e.checkEntity(L, 1))
	return 0
}

func (e *Engine) luaDestroyImmediate(L *lua.LState) int {
	e.world.DeleteEntity(e.checkMutable(L, 1))
	return 0
}

func (e *Engine) luaIsAlive(L *lua.LState) int {
	L.Push(lua.LBool(e.world.IsAlive(toEntity(L, 1))))
	return 1
}

func (e *Engine) luaName(L *lua.LState) int {
	L.Push(lua.LString(e.world.Entity(e.checkEntity(L, 1)).Name()))
	return 1
}

func (e *Engine) luaFind(L *lua.LState) int {
	ent, ok := e.world.EntityByName(L.CheckString(1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(e.entityValue(ent))
	return 1
}

func (e *Engine) luaGetPosition(L *lua.LState) int {
	ent := e.checkEntity(L, 1)
	tr := world.TryGetComponent[component.Transform](e.world, ent)
	if tr == nil {
		L.ArgError(1, "entity has no transform")
	}
	L.Push(lua.LNumber(tr.Position.X))
	L.Push(lua.LNumber(tr.Position.Y))
	L.Push(lua.LNumber(tr.Position.Z))
	return 3
}

func (e *Engine) luaSetPosition(L *lua.LState) int {
	ent := e.checkMutable(L, 1)
	tr := world.TryGetComponent[component.Transform](e.world, ent)
	if tr == nil {
		L.ArgError(1, "entity has no transform")
	}
	tr.Position = component.Vec3{
		X: float32(L.CheckNumber(2)),
		Y: float32(L.CheckNumber(3)),
		Z: float32(L.OptNumber(4, 0)),
	}
	return 0
}

func (e *Engine) luaHasScript(L *lua.LState) int {
	ent := e.checkEntity(L, 1)
	L.Push(lua.LBool(world.HasComponent[component.Script](e.world, ent)))
	return 1
}

func (e *Engine) luaAttach(L *lua.LState) int {
	ent := e.checkMutable(L, 1)
	name := L.CheckString(2)
	if !e.Has(name) {
		L.ArgError(2, "unknown script "+name)
	}
	if world.HasComponent[component.Script](e.world, ent) {
		L.ArgError(1, "entity already has a script")
	}
	Attach(e.world, ent, name)
	return 0
}

// emit queues a named signal for Go subscribers of Signal. Numbers are
// converted to their string form.
func (e *Engine) luaEmit(L *lua.LState) int {
	sig := Signal{Name: L.CheckString(1)}
	if L.GetTop() >= 2 {
		sig.Value = L.ToString(2)
	}
	world.Emit(e.world, sig)
	return 0
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

// Signal is a script-defined event raised with ecs.emit(name, value). It is
// delivered on the next world update.
type Signal struct {
	Name  string
	Value string
}
