package ecs

import (
	"fmt"

	"go.uber.org/zap"
)

// Entity encodes a 32-bit slot index in the lower bits and a 32-bit
// generation in the upper bits. The generation increments every time the
// slot is recycled, so a handle kept across a delete is detected as stale
// instead of aliasing the new occupant. Generations start at 1, which keeps
// the zero value free to mean "no entity".
type Entity uint64

// Null is the zero Entity. It never refers to a live entity.
const Null Entity = 0

func newEntity(index uint32, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

// ID returns the slot index, always in [0, MaxEntities) for issued handles.
func (e Entity) ID() uint32         { return uint32(e) }
func (e Entity) Generation() uint32 { return uint32(e >> 32) }
func (e Entity) IsNull() bool       { return e == Null }

func (e Entity) String() string {
	if e.IsNull() {
		return "entity(null)"
	}
	return fmt.Sprintf("entity(%d#%d)", e.ID(), e.Generation())
}

// EntityData is the per-slot metadata owned by the EntityManager. Copies
// handed out by EntityManager.Data are snapshots; mutate through the manager.
type EntityData struct {
	Signature Signature
	Name      string
	Tag       string
	Layers    LayerMask
	Parent    Entity
	Children  []Entity
	Alive     bool
}

func entityField(e Entity) zap.Field { return zap.Stringer("entity", e) }
