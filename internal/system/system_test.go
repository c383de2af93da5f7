package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/mcgl/engine/internal/component"
	"github.com/mcgl/engine/internal/core/world"
	"github.com/mcgl/engine/internal/scripting"
)

const walker = `
local ecs = require("ecs")
return {
  start = function(self) self.steps = 0 end,
  update = function(self, dt)
    self.steps = self.steps + 1
    local x, y, z = ecs.get_position(self.entity)
    ecs.set_position(self.entity, x + 1, y, z)
  end,
  on_destroy = function(self) ecs.make_entity("gone") end,
}
`

func newTestWorld(t *testing.T) (*world.World, *zap.Logger) {
	log := zaptest.NewLogger(t)
	return world.New(world.Options{Name: "systems"}, log), log
}

func TestScriptSystemLifecycle(t *testing.T) {
	w, log := newTestWorld(t)
	eng, err := scripting.NewEngine(w, "", log)
	require.NoError(t, err)
	defer eng.Close()
	require.NoError(t, eng.LoadString("walker", walker))

	ss := world.RegisterSystem(w, NewScriptSystem(w, eng, log))

	e := w.MakeEntity("npc")
	scripting.Attach(w, e, "walker")
	require.True(t, ss.Members().Contains(e))
	require.True(t, eng.Running(e))

	w.Update(time.Second)
	w.Update(time.Second)
	assert.Equal(t, float32(2), world.GetComponent[component.Transform](w, e).Position.X)

	// Leaving the exact signature stops the script.
	world.RemoveComponent[component.Script](w, e)
	assert.False(t, eng.Running(e))
	assert.Len(t, w.EntitiesByName("gone"), 1)

	world.AddComponent(w, e, component.Script{Name: "walker"})
	assert.True(t, eng.Running(e))

	w.DeleteEntity(e)
	assert.False(t, eng.Running(e))
	assert.Len(t, w.EntitiesByName("gone"), 2)
	assert.Empty(t, ss.Members().Entities())
}

func TestScriptSystemSkipsUnknownScripts(t *testing.T) {
	w, log := newTestWorld(t)
	eng, err := scripting.NewEngine(w, "", log)
	require.NoError(t, err)
	defer eng.Close()
	ss := world.RegisterSystem(w, NewScriptSystem(w, eng, log))

	e := w.MakeEntity("")
	scripting.Attach(w, e, "missing")
	assert.True(t, ss.Members().Contains(e))
	assert.False(t, eng.Running(e))
	w.Update(time.Second)
}

func TestMovementSystem(t *testing.T) {
	w, _ := newTestWorld(t)
	w.Schedule(NewMovementSystem(w))

	moving := w.MakeEntity("")
	world.AddComponent(w, moving, component.NewTransform(component.Vec3{X: 1}))
	world.AddComponent(w, moving, component.Velocity{Linear: component.Vec3{X: 2, Y: -1}})
	still := w.MakeEntity("")
	world.AddComponent(w, still, component.NewTransform(component.Vec3{}))

	w.Update(500 * time.Millisecond)
	assert.Equal(t, component.Vec3{X: 2, Y: -0.5}, world.GetComponent[component.Transform](w, moving).Position)
	assert.Equal(t, component.Vec3{}, world.GetComponent[component.Transform](w, still).Position)
}

func TestCleanupSystemFlushesQueue(t *testing.T) {
	w, log := newTestWorld(t)
	w.Schedule(NewCleanupSystem(w, log))

	e := w.MakeEntity("")
	w.MarkForDestruction(e)
	assert.True(t, w.IsAlive(e))

	w.Update(time.Millisecond)
	assert.False(t, w.IsAlive(e))
	assert.Equal(t, 0, w.PendingDestruction())
}
