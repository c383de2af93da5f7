package ecs

import (
	"slices"

	"go.uber.org/zap"
)

type entitySlot struct {
	data       EntityData
	generation uint32
	dying      bool
}

// EntityManager allocates entity ids and owns each entity's metadata.
// Freed ids are reissued oldest-first so the highest id in use stays low.
type EntityManager struct {
	contract  Contract
	capacity  int
	slots     [MaxEntities]entitySlot
	recycled  []uint32
	highWater uint32
	live      int
}

// NewEntityManager creates a manager that allows at most capacity live
// entities. A capacity of 0 means MaxEntities.
func NewEntityManager(capacity int, c Contract) *EntityManager {
	if capacity == 0 {
		capacity = MaxEntities
	}
	c.Requires(capacity > 0 && capacity <= MaxEntities, "entity capacity out of range",
		zap.Int("capacity", capacity), zap.Int("max", MaxEntities))
	return &EntityManager{
		contract: c,
		capacity: capacity,
		recycled: make([]uint32, 0, 64),
	}
}

func (m *EntityManager) Capacity() int { return m.capacity }

// Count returns the number of live entities.
func (m *EntityManager) Count() int { return m.live }

// HighWater is one past the highest slot index ever issued.
func (m *EntityManager) HighWater() int { return int(m.highWater) }

// MakeEntity issues a handle for a new entity with the given name.
func (m *EntityManager) MakeEntity(name string) Entity {
	m.contract.Requires(m.live < m.capacity, "too many entities",
		zap.Int("live", m.live), zap.Int("capacity", m.capacity))

	var idx uint32
	if len(m.recycled) > 0 {
		idx = m.recycled[0]
		m.recycled = m.recycled[1:]
	} else {
		idx = m.highWater
		m.highWater++
	}

	s := &m.slots[idx]
	if s.generation == 0 {
		s.generation = 1
	}
	s.data = EntityData{Name: name, Alive: true}
	s.dying = false
	m.live++
	return newEntity(idx, s.generation)
}

// DeleteEntity resets the entity's slot and queues its id for reuse. The
// entity is detached from its parent and its children lose their parent
// link; children are not destroyed.
func (m *EntityManager) DeleteEntity(e Entity) {
	m.requireAlive(e)

	s := &m.slots[e.ID()]
	if p := s.data.Parent; m.IsAlive(p) {
		ps := &m.slots[p.ID()]
		ps.data.Children = removeEntity(ps.data.Children, e)
	}
	for _, c := range s.data.Children {
		if m.IsAlive(c) {
			m.slots[c.ID()].data.Parent = Null
		}
	}

	s.data = EntityData{}
	s.dying = false
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	m.recycled = append(m.recycled, e.ID())
	m.live--
}

// IsAlive reports whether e refers to the current occupant of a live slot.
func (m *EntityManager) IsAlive(e Entity) bool {
	if e.IsNull() || e.ID() >= m.highWater {
		return false
	}
	s := &m.slots[e.ID()]
	return s.data.Alive && s.generation == e.Generation()
}

// MarkDying flags a live entity as being torn down. A dying entity can be
// read but no longer mutated.
func (m *EntityManager) MarkDying(e Entity) {
	m.requireAlive(e)
	m.slots[e.ID()].dying = true
}

func (m *EntityManager) IsDying(e Entity) bool {
	return m.IsAlive(e) && m.slots[e.ID()].dying
}

func (m *EntityManager) HasComponent(e Entity, componentID int) bool {
	m.requireAlive(e)
	m.requireComponentID(componentID)
	return m.slots[e.ID()].data.Signature.Test(componentID)
}

func (m *EntityManager) AddComponent(e Entity, componentID int) {
	m.requireAlive(e)
	m.requireComponentID(componentID)
	s := &m.slots[e.ID()]
	s.data.Signature = s.data.Signature.Set(componentID)
}

func (m *EntityManager) RemoveComponent(e Entity, componentID int) {
	m.requireAlive(e)
	m.requireComponentID(componentID)
	s := &m.slots[e.ID()]
	s.data.Signature = s.data.Signature.Clear(componentID)
}

func (m *EntityManager) Signature(e Entity) Signature {
	m.requireAlive(e)
	return m.slots[e.ID()].data.Signature
}

// Data returns a snapshot of the entity's metadata.
func (m *EntityManager) Data(e Entity) EntityData {
	m.requireAlive(e)
	d := m.slots[e.ID()].data
	d.Children = slices.Clone(d.Children)
	return d
}

func (m *EntityManager) Name(e Entity) string {
	m.requireAlive(e)
	return m.slots[e.ID()].data.Name
}

func (m *EntityManager) SetName(e Entity, name string) {
	m.requireAlive(e)
	m.slots[e.ID()].data.Name = name
}

func (m *EntityManager) Tag(e Entity) string {
	m.requireAlive(e)
	return m.slots[e.ID()].data.Tag
}

func (m *EntityManager) SetTag(e Entity, tag string) {
	m.requireAlive(e)
	m.slots[e.ID()].data.Tag = tag
}

func (m *EntityManager) Layers(e Entity) LayerMask {
	m.requireAlive(e)
	return m.slots[e.ID()].data.Layers
}

func (m *EntityManager) SetLayers(e Entity, mask LayerMask) {
	m.requireAlive(e)
	m.slots[e.ID()].data.Layers = mask
}

// Parent returns the entity's parent, if it has one.
func (m *EntityManager) Parent(e Entity) (Entity, bool) {
	m.requireAlive(e)
	p := m.slots[e.ID()].data.Parent
	return p, !p.IsNull()
}

// Children returns a copy of the entity's children in insertion order.
func (m *EntityManager) Children(e Entity) []Entity {
	m.requireAlive(e)
	return slices.Clone(m.slots[e.ID()].data.Children)
}

// SetParent re-parents child under parent, keeping both sides of the link in
// step. Passing Null detaches the child.
func (m *EntityManager) SetParent(child, parent Entity) {
	m.requireAlive(child)
	if !parent.IsNull() {
		m.requireAlive(parent)
		m.contract.Requires(child != parent, "entity cannot parent itself", entityField(child))
		for p := parent; !p.IsNull(); p = m.slots[p.ID()].data.Parent {
			m.contract.Requires(p != child, "parent cycle", entityField(child), zap.Stringer("parent", parent))
		}
	}

	cs := &m.slots[child.ID()]
	if old := cs.data.Parent; m.IsAlive(old) {
		os := &m.slots[old.ID()]
		os.data.Children = removeEntity(os.data.Children, child)
	}
	cs.data.Parent = parent
	if !parent.IsNull() {
		ps := &m.slots[parent.ID()]
		ps.data.Children = append(ps.data.Children, child)
	}
}

// The lookups below scan every slot up to the high-water mark. That is
// linear in MaxEntities, which is small enough not to warrant an index.

// EntityByName returns the live entity with the lowest id carrying name.
func (m *EntityManager) EntityByName(name string) (Entity, bool) {
	return m.first(func(d *EntityData) bool { return d.Name == name })
}

// EntityByTag returns the live entity with the lowest id carrying tag.
func (m *EntityManager) EntityByTag(tag string) (Entity, bool) {
	return m.first(func(d *EntityData) bool { return d.Tag == tag })
}

func (m *EntityManager) EntitiesByName(name string) []Entity {
	return m.filter(func(d *EntityData) bool { return d.Name == name })
}

func (m *EntityManager) EntitiesByTag(tag string) []Entity {
	return m.filter(func(d *EntityData) bool { return d.Tag == tag })
}

// EntitiesByLayer returns the live entities whose layer mask equals mask.
func (m *EntityManager) EntitiesByLayer(mask LayerMask) []Entity {
	return m.filter(func(d *EntityData) bool { return d.Layers == mask })
}

// Each calls fn for every live entity in id order.
func (m *EntityManager) Each(fn func(Entity)) {
	for i := uint32(0); i < m.highWater; i++ {
		s := &m.slots[i]
		if s.data.Alive {
			fn(newEntity(i, s.generation))
		}
	}
}

func (m *EntityManager) first(match func(*EntityData) bool) (Entity, bool) {
	for i := uint32(0); i < m.highWater; i++ {
		s := &m.slots[i]
		if s.data.Alive && match(&s.data) {
			return newEntity(i, s.generation), true
		}
	}
	return Null, false
}

func (m *EntityManager) filter(match func(*EntityData) bool) []Entity {
	var out []Entity
	for i := uint32(0); i < m.highWater; i++ {
		s := &m.slots[i]
		if s.data.Alive && match(&s.data) {
			out = append(out, newEntity(i, s.generation))
		}
	}
	return out
}

func (m *EntityManager) requireAlive(e Entity) {
	m.contract.Requires(m.IsAlive(e), "dead or stale entity handle", entityField(e))
}

func (m *EntityManager) requireComponentID(id int) {
	m.contract.Requires(id >= 0 && id < MaxComponents, "component id out of range",
		zap.Int("component_id", id), zap.Int("max", MaxComponents))
}

func removeEntity(list []Entity, e Entity) []Entity {
	if i := slices.Index(list, e); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return list
}
