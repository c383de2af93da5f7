package scripting

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap/zaptest"

	"github.com/mcgl/engine/internal/component"
	"github.com/mcgl/engine/internal/core/ecs"
	"github.com/mcgl/engine/internal/core/system"
	"github.com/mcgl/engine/internal/core/world"
)

const moverScript = `
local ecs = require("ecs")
local M = {}

function M.start(self)
  self.ticks = 0
  ecs.set_position(self.entity, 1, 2, 3)
end

function M.update(self, dt)
  self.ticks = self.ticks + 1
  local x, y, z = ecs.get_position(self.entity)
  ecs.set_position(self.entity, x + dt, y, z)
end

function M.on_destroy(self)
  ecs.make_entity("tombstone")
end

return M
`

func newEngine(t *testing.T) (*world.World, *Engine) {
	t.Helper()
	log := zaptest.NewLogger(t)
	w := world.New(world.Options{Name: "scripting"}, log)
	e, err := NewEngine(w, "", log)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return w, e
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mover.lua"), []byte(moverScript), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	w := world.New(world.Options{}, nil)
	e, err := NewEngine(w, dir, nil)
	require.NoError(t, err)
	defer e.Close()
	assert.Equal(t, []string{"mover"}, e.Scripts())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.lua"), []byte("return 42"), 0o644))
	_, err = NewEngine(w, dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want table")

	_, err = NewEngine(w, filepath.Join(dir, "missing"), nil)
	require.NoError(t, err)
}

func TestScriptLifecycle(t *testing.T) {
	w, e := newEngine(t)
	require.NoError(t, e.LoadString("mover", moverScript))

	ent := w.MakeEntity("crate")
	Attach(w, ent, "mover")
	require.True(t, world.HasComponent[component.Transform](w, ent))

	require.NoError(t, e.Start(ent, "mover"))
	assert.True(t, e.Running(ent))
	assert.Equal(t, component.Vec3{X: 1, Y: 2, Z: 3}, world.GetComponent[component.Transform](w, ent).Position)

	require.NoError(t, e.Update(ent, 500*time.Millisecond))
	require.NoError(t, e.Update(ent, 500*time.Millisecond))
	assert.Equal(t, float32(2), world.GetComponent[component.Transform](w, ent).Position.X)
	assert.Equal(t, lua.LNumber(2), e.Field(ent, "ticks"))

	require.NoError(t, e.Stop(ent))
	assert.False(t, e.Running(ent))
	_, ok := w.EntityByName("tombstone")
	assert.True(t, ok)

	// Stopping twice is a no-op.
	require.NoError(t, e.Stop(ent))
}

func TestScriptErrorsAreReturned(t *testing.T) {
	w, e := newEngine(t)
	require.NoError(t, e.LoadString("bad", `
local ecs = require("ecs")
return {
  start = function(self)
    self.gone = ecs.make_entity("gone")
    ecs.destroy_immediate(self.gone)
  end,
  update = function(self) ecs.name(self.gone) end,
}`))

	ent := w.MakeEntity("")
	require.NoError(t, e.Start(ent, "bad"))
	err := e.Update(ent, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dead or stale entity")

	assert.Error(t, e.Start(ent, "nope"))
	assert.Error(t, e.LoadString("syntax", "return {"))
}

func TestDeletedEntityDropsInstance(t *testing.T) {
	w, e := newEngine(t)
	require.NoError(t, e.LoadString("idle", "return {}"))

	ent := w.MakeEntity("")
	require.NoError(t, e.Start(ent, "idle"))
	w.DeleteEntity(ent)
	assert.False(t, e.Running(ent))
}

func TestScriptSignals(t *testing.T) {
	w, e := newEngine(t)
	require.NoError(t, e.LoadString("beacon", `
local ecs = require("ecs")
return {
  start = function(self) ecs.emit("spawned", 3) end,
}`))

	var got []Signal
	world.Subscribe(w, func(s Signal) { got = append(got, s) })

	require.NoError(t, e.Start(w.MakeEntity(""), "beacon"))
	assert.Empty(t, got)
	w.Update(time.Millisecond)
	assert.Equal(t, []Signal{{Name: "spawned", Value: "3"}}, got)
}

func TestSpawnerScriptRunsToCompletion(t *testing.T) {
	log := zaptest.NewLogger(t)
	w := world.New(world.Options{Name: "spawner"}, log)
	e, err := NewEngine(w, "../../scripts", log)
	require.NoError(t, err)
	t.Cleanup(e.Close)

	var got []Signal
	world.Subscribe(w, func(s Signal) { got = append(got, s) })

	nest := w.MakeEntity("nest")
	require.NoError(t, e.Start(nest, "spawner"))
	for i := 0; i < 15; i++ {
		require.NoError(t, e.Update(nest, 1100*time.Millisecond))
		w.FlushDestroyQueue()
		w.Update(0)
		if !w.IsAlive(nest) {
			break
		}
	}

	assert.False(t, w.IsAlive(nest))
	assert.Len(t, w.EntitiesByName("minion"), 10)
	require.Len(t, got, 10)
	assert.Equal(t, Signal{Name: "spawned", Value: "1"}, got[0])
	assert.Equal(t, Signal{Name: "spawned", Value: "10"}, got[9])
}

func TestEntityHandles(t *testing.T) {
	w, e := newEngine(t)
	require.NoError(t, e.LoadString("handles", `
local ecs = require("ecs")
return {
  start = function(self)
    local a = ecs.make_entity("a")
    self.same = ecs.find("a") == a
    self.other = ecs.make_entity("b") == a
    self.label = tostring(a)
    ecs.destroy_immediate(a)
    self.alive = ecs.is_alive(a)
  end,
}`))

	ent := w.MakeEntity("")
	require.NoError(t, e.Start(ent, "handles"))
	assert.Equal(t, lua.LTrue, e.Field(ent, "same"))
	assert.Equal(t, lua.LFalse, e.Field(ent, "other"))
	assert.Equal(t, lua.LFalse, e.Field(ent, "alive"))
	assert.Contains(t, e.Field(ent, "label").String(), "entity(")

	// Handles keep every bit of the generation.
	far := ecs.Entity(uint64(1)<<60 | 7)
	assert.Equal(t, far, e.entityValue(far).Value)
}

func TestContractViolationEscapesScripts(t *testing.T) {
	w, e := newEngine(t)
	require.NoError(t, e.LoadString("idle", "return {}"))
	require.NoError(t, e.LoadString("attacher", `
local ecs = require("ecs")
return {
  start = function(self)
    pcall(ecs.attach, ecs.make_entity("x"), "idle")
  end,
}`))
	sys := world.RegisterSystem(w, &strictSystem{
		Base: system.NewBase(world.Signature2[component.Transform, component.Script](w)),
		w:    w,
	})
	require.NotNil(t, sys)

	ent := w.MakeEntity("")
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a contract violation")
		err, ok := r.(error)
		require.True(t, ok, "panic value should be an error, got %T", r)
		require.True(t, eris.Is(err, ecs.ErrContractViolation), "unexpected panic: %v", err)
		assert.Nil(t, e.violation)
	}()
	_ = e.Start(ent, "attacher")
}

// strictSystem reads a component its members never have.
type strictSystem struct {
	system.Base
	w *world.World
}

func (s *strictSystem) OnEntityEnter(ent ecs.Entity) {
	world.GetComponent[component.Velocity](s.w, ent)
}

func TestScriptsCanSpawnAndAttach(t *testing.T) {
	w, e := newEngine(t)
	require.NoError(t, e.LoadString("idle", "return {}"))
	require.NoError(t, e.LoadString("spawner", `
local ecs = require("ecs")
return {
  start = function(self)
    local child = ecs.make_entity("child")
    ecs.attach(child, "idle")
    self.child_has_script = ecs.has_script(child)
    self.found = ecs.find("child") == child
  end,
}`))

	ent := w.MakeEntity("")
	require.NoError(t, e.Start(ent, "spawner"))
	assert.Equal(t, lua.LTrue, e.Field(ent, "child_has_script"))
	assert.Equal(t, lua.LTrue, e.Field(ent, "found"))

	child, ok := w.EntityByName("child")
	require.True(t, ok)
	assert.Equal(t, "idle", world.GetComponent[component.Script](w, child).Name)
}
