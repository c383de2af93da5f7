package world

import (
	"github.com/mcgl/engine/internal/core/ecs"
)

func (w *World) EntityByName(name string) (ecs.Entity, bool) { return w.entities.EntityByName(name) }
func (w *World) EntityByTag(tag string) (ecs.Entity, bool)   { return w.entities.EntityByTag(tag) }
func (w *World) EntitiesByName(name string) []ecs.Entity     { return w.entities.EntitiesByName(name) }
func (w *World) EntitiesByTag(tag string) []ecs.Entity       { return w.entities.EntitiesByTag(tag) }

// EntitiesByLayer returns the entities whose layer mask is exactly mask.
func (w *World) EntitiesByLayer(mask ecs.LayerMask) []ecs.Entity {
	return w.entities.EntitiesByLayer(mask)
}

// Entities returns every live entity in id order.
func (w *World) Entities() []ecs.Entity {
	out := make([]ecs.Entity, 0, w.entities.Count())
	w.entities.Each(func(e ecs.Entity) { out = append(out, e) })
	return out
}

// Handle wraps an entity with its world so callers outside the core can work
// with it without juggling both.
type Handle struct {
	w *World
	e ecs.Entity
}

func (w *World) Entity(e ecs.Entity) Handle { return Handle{w: w, e: e} }

func (h Handle) ID() ecs.Entity        { return h.e }
func (h Handle) World() *World         { return h.w }
func (h Handle) IsAlive() bool         { return h.w.entities.IsAlive(h.e) }
func (h Handle) Name() string          { return h.w.entities.Name(h.e) }
func (h Handle) Tag() string           { return h.w.entities.Tag(h.e) }
func (h Handle) Layers() ecs.LayerMask { return h.w.entities.Layers(h.e) }

func (h Handle) SetName(name string) {
	h.w.requireMutable(h.e)
	h.w.entities.SetName(h.e, name)
}

func (h Handle) SetTag(tag string) {
	h.w.requireMutable(h.e)
	h.w.entities.SetTag(h.e, tag)
}

func (h Handle) SetLayers(mask ecs.LayerMask) {
	h.w.requireMutable(h.e)
	h.w.entities.SetLayers(h.e, mask)
}

// AddLayer adds the named layer to the entity's mask. The layer must be
// registered with the world's LayerRegistry.
func (h Handle) AddLayer(name string) {
	h.SetLayers(h.Layers().Union(h.w.layers.LayerMaskByName(name)))
}

func (h Handle) InLayer(name string) bool {
	return h.Layers().Intersects(h.w.layers.LayerMaskByName(name))
}

func (h Handle) Parent() (Handle, bool) {
	p, ok := h.w.entities.Parent(h.e)
	return Handle{w: h.w, e: p}, ok
}

// SetParent links h under parent. A zero Handle detaches h.
func (h Handle) SetParent(parent Handle) {
	h.w.requireMutable(h.e)
	h.w.entities.SetParent(h.e, parent.e)
}

func (h Handle) Children() []Handle {
	children := h.w.entities.Children(h.e)
	out := make([]Handle, len(children))
	for i, c := range children {
		out[i] = Handle{w: h.w, e: c}
	}
	return out
}

// Destroy deletes the entity immediately.
func (h Handle) Destroy() { h.w.DeleteEntity(h.e) }

// DestroyLater queues the entity for the end-of-tick flush.
func (h Handle) DestroyLater() { h.w.MarkForDestruction(h.e) }
