package world

import (
	"github.com/mcgl/engine/internal/core/ecs"
	"github.com/mcgl/engine/internal/core/system"
)

// RegisterSystem adds s and enters it with every live entity whose signature
// already matches. Systems that also implement system.Updater are scheduled
// on the tick runner.
func RegisterSystem[S system.System](w *World, s S) S {
	system.Register(w.systems, s)
	for _, e := range w.Entities() {
		if w.entities.IsAlive(e) && !w.entities.IsDying(e) {
			w.systems.Sync(s, e)
		}
	}
	if u, ok := any(s).(system.Updater); ok {
		w.runner.Register(u)
	}
	return s
}

func GetSystem[S system.System](w *World) S {
	return system.Get[S](w.systems)
}

func HasSystem[S system.System](w *World) bool {
	return system.Has[S](w.systems)
}

// Systems returns the registered systems in registration order.
func (w *World) Systems() []system.System { return w.systems.Systems() }

// Members returns a copy of the entities s currently tracks.
func Members[S system.System](w *World) []ecs.Entity {
	return GetSystem[S](w).Members().Entities()
}
