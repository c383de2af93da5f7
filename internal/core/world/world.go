package world

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mcgl/engine/internal/core/ecs"
	"github.com/mcgl/engine/internal/core/event"
	"github.com/mcgl/engine/internal/core/system"
)

// World is the top-level ECS container. It owns the entity table, one store
// per component type, the system manager, the event bus and a deferred
// destruction queue flushed by CleanupSystem each tick.
//
// A World is not safe for concurrent use. Separate worlds may share one
// TypeRegistry.
type World struct {
	id       uuid.UUID
	name     string
	log      *zap.Logger
	contract ecs.Contract

	types    *ecs.TypeRegistry
	entities *ecs.EntityManager
	stores   *ecs.StoreRegistry
	layers   *ecs.LayerRegistry
	systems  *system.Manager
	runner   *system.Runner
	bus      *event.Bus

	destroyQueue []ecs.Entity
}

// Options configures New.
type Options struct {
	Name     string
	Capacity int               // live entity limit; 0 means ecs.MaxEntities
	Types    *ecs.TypeRegistry // shared type ids; nil gives the world its own
}

func New(opts Options, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New()
	log = log.With(zap.String("world", id.String()))
	if opts.Name != "" {
		log = log.With(zap.String("world_name", opts.Name))
	}
	types := opts.Types
	if types == nil {
		types = ecs.NewTypeRegistry()
	}
	c := ecs.NewContract(log)

	w := &World{
		id:           id,
		name:         opts.Name,
		log:          log,
		contract:     c,
		types:        types,
		entities:     ecs.NewEntityManager(opts.Capacity, c),
		stores:       ecs.NewStoreRegistry(c),
		layers:       ecs.NewLayerRegistry(c),
		runner:       system.NewRunner(),
		bus:          event.NewBus(types, log),
		destroyQueue: make([]ecs.Entity, 0, 64),
	}
	w.systems = system.NewManager(w.entities, types, log)
	// Requests may be queued with Emit, so the target can be gone by the
	// time they are delivered.
	event.Subscribe(w.bus, func(ev event.DestroyEntity) {
		if !w.entities.IsAlive(ev.Entity) || w.entities.IsDying(ev.Entity) {
			w.log.Debug("destroy request for dead entity", zap.Stringer("entity", ev.Entity))
			return
		}
		w.DeleteEntity(ev.Entity)
	})
	return w
}

func (w *World) ID() uuid.UUID              { return w.id }
func (w *World) Name() string               { return w.name }
func (w *World) Logger() *zap.Logger        { return w.log }
func (w *World) Types() *ecs.TypeRegistry   { return w.types }
func (w *World) Bus() *event.Bus            { return w.bus }
func (w *World) Layers() *ecs.LayerRegistry { return w.layers }
func (w *World) Capacity() int              { return w.entities.Capacity() }
func (w *World) Count() int                 { return w.entities.Count() }
func (w *World) IsAlive(e ecs.Entity) bool  { return w.entities.IsAlive(e) }
func (w *World) IsDying(e ecs.Entity) bool  { return w.entities.IsDying(e) }

func (w *World) Signature(e ecs.Entity) ecs.Signature {
	return w.entities.Signature(e)
}

// MakeEntity creates an entity and publishes EntityCreated.
func (w *World) MakeEntity(name string) ecs.Entity {
	e := w.entities.MakeEntity(name)
	w.log.Debug("entity created", zap.Stringer("entity", e), zap.String("name", name))
	event.Invoke(w.bus, event.EntityCreated{Entity: e, Name: name})
	return e
}

// DeleteEntity frees every component e owns, notifies the systems tracking
// it, recycles its slot and publishes EntityDeleted.
//
// While OnEntityDestroyed callbacks run, e is still alive and its metadata
// readable, but it owns no components and any mutation is a contract
// violation.
func (w *World) DeleteEntity(e ecs.Entity) {
	w.requireMutable(e)
	name := w.entities.Name(e)
	w.entities.MarkDying(e)

	sig := w.entities.Signature(e)
	w.stores.FreeAll(e, sig)
	sig.Each(func(id int) { w.entities.RemoveComponent(e, id) })

	w.systems.EntityDestroyed(e)
	w.entities.DeleteEntity(e)
	w.log.Debug("entity deleted", zap.Stringer("entity", e), zap.String("name", name))
	event.Invoke(w.bus, event.EntityDeleted{Entity: e, Name: name})
}

// MarkForDestruction queues e for deletion at the end of the tick.
func (w *World) MarkForDestruction(e ecs.Entity) {
	w.destroyQueue = append(w.destroyQueue, e)
}

// FlushDestroyQueue deletes every queued entity that is still alive. Entities
// queued by callbacks during the flush wait for the next flush.
func (w *World) FlushDestroyQueue() int {
	queue := w.destroyQueue
	w.destroyQueue = make([]ecs.Entity, 0, cap(queue))
	n := 0
	for _, e := range queue {
		if w.entities.IsAlive(e) && !w.entities.IsDying(e) {
			w.DeleteEntity(e)
			n++
		}
	}
	return n
}

// PendingDestruction returns the number of queued entities.
func (w *World) PendingDestruction() int { return len(w.destroyQueue) }

// Schedule adds u to the tick runner.
func (w *World) Schedule(u system.Updater) {
	w.runner.Register(u)
}

// Update delivers the events emitted since the last update, then runs every
// scheduled Updater in phase order.
func (w *World) Update(dt time.Duration) {
	w.bus.Dispatch()
	w.runner.Tick(dt)
}

func (w *World) requireMutable(e ecs.Entity) {
	w.contract.Requires(w.entities.IsAlive(e), "dead or stale entity handle", zap.Stringer("entity", e))
	w.contract.Requires(!w.entities.IsDying(e), "entity is being destroyed", zap.Stringer("entity", e))
}
