package system

import (
	"time"

	"github.com/mcgl/engine/internal/core/ecs"
)

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain input events
	PhasePreUpdate               // 1: process last tick's events
	PhaseUpdate                  // 2: game logic, scripts
	PhasePostUpdate              // 3: transforms, hierarchy
	PhaseRender                  // 4: hand data to the renderer
	PhaseCleanup                 // 5: destroy queued entities
)

// Updater is implemented by systems that run every tick.
type Updater interface {
	Phase() Phase
	Update(dt time.Duration)
}

// System is a behaviour unit that tracks the entities whose signature is
// exactly equal to Signature(). An entity with extra components does not
// match.
//
// The callbacks run synchronously inside the mutating call. OnEntityEnter
// fires before the entity is added to Members(); OnEntityExit and
// OnEntityDestroyed fire before it is removed.
type System interface {
	Signature() ecs.Signature
	Members() *Membership
	OnEntityEnter(e ecs.Entity)
	OnEntityExit(e ecs.Entity)
	OnEntityDestroyed(e ecs.Entity)
}

// Base implements System with no-op callbacks. Embed it and override what
// you need.
type Base struct {
	signature ecs.Signature
	members   Membership
}

func NewBase(sig ecs.Signature) Base {
	return Base{signature: sig}
}

func (b *Base) Signature() ecs.Signature { return b.signature }
func (b *Base) Members() *Membership     { return &b.members }

func (b *Base) OnEntityEnter(ecs.Entity)     {}
func (b *Base) OnEntityExit(ecs.Entity)      {}
func (b *Base) OnEntityDestroyed(ecs.Entity) {}

// Membership is the set of entities a system currently tracks, kept dense
// with swap-remove like the component stores.
type Membership struct {
	dense    []ecs.Entity
	index    map[ecs.Entity]int
	entering map[ecs.Entity]bool // OnEntityEnter in progress
}

func (m *Membership) Contains(e ecs.Entity) bool {
	_, ok := m.index[e]
	return ok
}

func (m *Membership) Len() int { return len(m.dense) }

// Entities returns a copy of the members.
func (m *Membership) Entities() []ecs.Entity {
	out := make([]ecs.Entity, len(m.dense))
	copy(out, m.dense)
	return out
}

// ForEach calls fn for each member. Entities that leave the set while the
// loop runs are skipped; entities that join are not visited.
func (m *Membership) ForEach(fn func(ecs.Entity)) {
	for _, e := range m.Entities() {
		if m.Contains(e) {
			fn(e)
		}
	}
}

func (m *Membership) add(e ecs.Entity) {
	if m.index == nil {
		m.index = make(map[ecs.Entity]int, 16)
	}
	if _, ok := m.index[e]; ok {
		return
	}
	m.index[e] = len(m.dense)
	m.dense = append(m.dense, e)
}

func (m *Membership) remove(e ecs.Entity) {
	idx, ok := m.index[e]
	if !ok {
		return
	}
	last := len(m.dense) - 1
	moved := m.dense[last]
	m.dense[idx] = moved
	m.index[moved] = idx
	m.dense = m.dense[:last]
	delete(m.index, e)
}

func (m *Membership) beginEnter(e ecs.Entity) {
	if m.entering == nil {
		m.entering = make(map[ecs.Entity]bool, 4)
	}
	m.entering[e] = true
}

func (m *Membership) endEnter(e ecs.Entity) { delete(m.entering, e) }
