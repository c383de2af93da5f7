// Profiling:
// go build ./cmd/ecsprofile
// ./ecsprofile -mode mem
// go tool pprof -http=":8000" -nodefraction=0.001 ./ecsprofile mem.pprof

package main

import (
	"flag"

	"github.com/pkg/profile"

	"github.com/mcgl/engine/internal/component"
	"github.com/mcgl/engine/internal/core/ecs"
	coresys "github.com/mcgl/engine/internal/core/system"
	"github.com/mcgl/engine/internal/core/world"
)

type tracked struct {
	coresys.Base
	entered int
}

func (t *tracked) OnEntityEnter(ecs.Entity) { t.entered++ }

func main() {
	mode := flag.String("mode", "cpu", "cpu or mem")
	rounds := flag.Int("rounds", 20, "worlds to build")
	iters := flag.Int("iters", 500, "churn iterations per world")
	flag.Parse()

	opt := profile.CPUProfile
	if *mode == "mem" {
		opt = profile.MemProfileAllocs
	}
	p := profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook)
	run(*rounds, *iters, ecs.MaxEntities)
	p.Stop()
}

// run fills a world, moves everything, then strips and deletes half of the
// entities each iteration so the stores swap-remove and the system diff
// runs on every mutation.
func run(rounds, iters, numEntities int) {
	for range rounds {
		w := world.New(world.Options{}, nil)
		world.RegisterSystem(w, &tracked{Base: coresys.NewBase(world.Signature2[component.Transform, component.Velocity](w))})

		entities := make([]ecs.Entity, 0, numEntities)
		for range iters {
			for len(entities) < numEntities {
				e := w.MakeEntity("")
				world.AddComponent(w, e, component.NewTransform(component.Vec3{}))
				world.AddComponent(w, e, component.Velocity{Linear: component.Vec3{X: 1}})
				entities = append(entities, e)
			}
			world.Each2(w, func(_ ecs.Entity, tr *component.Transform, v *component.Velocity) {
				tr.Position = tr.Position.Add(v.Linear)
			})
			kept := entities[:0]
			for i, e := range entities {
				if i%2 == 0 {
					world.RemoveComponent[component.Velocity](w, e)
					w.DeleteEntity(e)
					continue
				}
				kept = append(kept, e)
			}
			entities = kept
		}
	}
}
