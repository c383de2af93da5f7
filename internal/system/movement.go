package system

import (
	"time"

	"github.com/mcgl/engine/internal/component"
	"github.com/mcgl/engine/internal/core/ecs"
	coresys "github.com/mcgl/engine/internal/core/system"
	"github.com/mcgl/engine/internal/core/world"
)

// MovementSystem integrates Velocity into Transform for every entity that
// has both, whatever else it carries.
// Phase 3 (PostUpdate).
type MovementSystem struct {
	world *world.World
}

func NewMovementSystem(w *world.World) *MovementSystem {
	return &MovementSystem{world: w}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	secs := float32(dt.Seconds())
	world.Each2(s.world, func(_ ecs.Entity, tr *component.Transform, v *component.Velocity) {
		tr.Position = tr.Position.Add(v.Linear.Scale(secs))
	})
}
