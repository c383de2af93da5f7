package system

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mcgl/engine/internal/component"
	"github.com/mcgl/engine/internal/core/ecs"
	coresys "github.com/mcgl/engine/internal/core/system"
	"github.com/mcgl/engine/internal/core/world"
	"github.com/mcgl/engine/internal/data"
	"github.com/mcgl/engine/internal/scripting"
)

// SpawnSystem creates the entities described by the prefab table on its
// first tick. Later ticks do nothing; Spawn can be called at any time.
// Phase 1 (PreUpdate).
type SpawnSystem struct {
	world   *world.World
	prefabs *data.PrefabTable
	lua     *scripting.Engine // nil: scripts are not checked
	log     *zap.Logger
	done    bool
}

func NewSpawnSystem(w *world.World, prefabs *data.PrefabTable, lua *scripting.Engine, log *zap.Logger) *SpawnSystem {
	return &SpawnSystem{world: w, prefabs: prefabs, lua: lua, log: log}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *SpawnSystem) Update(_ time.Duration) {
	if s.done {
		return
	}
	s.done = true
	n := 0
	for _, p := range s.prefabs.All() {
		for i := 0; i < p.Copies(); i++ {
			if _, err := s.Spawn(p.Name); err != nil {
				s.log.Error("prefab spawn failed", zap.String("prefab", p.Name), zap.Error(err))
				continue
			}
			n++
		}
	}
	s.log.Info("prefabs spawned", zap.Int("entities", n))
}

// Spawn creates one entity from the named prefab. Its parent, if any, is the
// lowest-id live entity carrying the parent prefab's name.
func (s *SpawnSystem) Spawn(name string) (ecs.Entity, error) {
	p := s.prefabs.Get(name)
	if p == nil {
		return ecs.Null, fmt.Errorf("spawn %s: unknown prefab", name)
	}
	if s.world.Count() >= s.world.Capacity() {
		return ecs.Null, fmt.Errorf("spawn %s: entity limit %d reached", name, s.world.Capacity())
	}
	if p.Script != "" && s.lua != nil && !s.lua.Has(p.Script) {
		return ecs.Null, fmt.Errorf("spawn %s: unknown script %q", name, p.Script)
	}
	layers := s.world.Layers()
	for _, l := range p.Layers {
		if !layers.HasLayer(l) {
			return ecs.Null, fmt.Errorf("spawn %s: unknown layer %q", name, l)
		}
	}

	h := s.world.Entity(s.world.MakeEntity(p.Name))
	h.SetTag(p.Tag)
	h.SetLayers(layers.MaskOf(p.Layers...))
	if p.Parent != "" {
		if parent, ok := s.world.EntityByName(p.Parent); ok {
			h.SetParent(s.world.Entity(parent))
		}
	}

	e := h.ID()
	world.AddComponent(s.world, e, component.NewTransform(component.Vec3{X: p.Position[0], Y: p.Position[1], Z: p.Position[2]}))
	if p.Velocity != nil {
		v := *p.Velocity
		world.AddComponent(s.world, e, component.Velocity{Linear: component.Vec3{X: v[0], Y: v[1], Z: v[2]}})
	}
	if p.Script != "" {
		scripting.Attach(s.world, e, p.Script)
	}
	return e, nil
}
