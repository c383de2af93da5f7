package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/mcgl/engine/internal/component"
	"github.com/mcgl/engine/internal/core/ecs"
	coresys "github.com/mcgl/engine/internal/core/system"
	"github.com/mcgl/engine/internal/core/world"
	"github.com/mcgl/engine/internal/scripting"
)

// ScriptSystem runs the Lua behaviour of every entity whose components are
// exactly {Transform, Script}: start on enter, update every tick, on_destroy
// on exit or destruction.
// Phase 2 (Update).
//
// Script errors are logged and never stop the tick.
type ScriptSystem struct {
	coresys.Base
	world *world.World
	lua   *scripting.Engine
	log   *zap.Logger
}

func NewScriptSystem(w *world.World, lua *scripting.Engine, log *zap.Logger) *ScriptSystem {
	return &ScriptSystem{
		Base:  coresys.NewBase(world.Signature2[component.Transform, component.Script](w)),
		world: w,
		lua:   lua,
		log:   log,
	}
}

func (s *ScriptSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ScriptSystem) OnEntityEnter(e ecs.Entity) {
	name := world.GetComponent[component.Script](s.world, e).Name
	if err := s.lua.Start(e, name); err != nil {
		s.log.Error("lua script start failed", zap.Stringer("entity", e), zap.String("script", name), zap.Error(err))
	}
}

func (s *ScriptSystem) OnEntityExit(e ecs.Entity) {
	s.stop(e)
}

// OnEntityDestroyed runs after e's components are freed; the engine still
// holds the instance.
func (s *ScriptSystem) OnEntityDestroyed(e ecs.Entity) {
	s.stop(e)
}

func (s *ScriptSystem) Update(dt time.Duration) {
	s.Members().ForEach(func(e ecs.Entity) {
		if err := s.lua.Update(e, dt); err != nil {
			s.log.Error("lua script update failed", zap.Stringer("entity", e), zap.Error(err))
		}
	})
}

func (s *ScriptSystem) stop(e ecs.Entity) {
	if err := s.lua.Stop(e); err != nil {
		s.log.Error("lua script on_destroy failed", zap.Stringer("entity", e), zap.Error(err))
	}
}
