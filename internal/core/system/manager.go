package system

import (
	"reflect"

	"github.com/mcgl/engine/internal/core/ecs"
	"go.uber.org/zap"
)

// EntityView is the read access the Manager needs to the entity table.
type EntityView interface {
	IsAlive(e ecs.Entity) bool
	Signature(e ecs.Entity) ecs.Signature
}

// Manager keeps every registered system's membership equal to the set of
// live entities whose signature equals the system's signature.
type Manager struct {
	contract ecs.Contract
	log      *zap.Logger
	types    *ecs.TypeRegistry
	view     EntityView
	systems  []System
	byID     map[int]System
}

func NewManager(view EntityView, types *ecs.TypeRegistry, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if types == nil {
		types = ecs.NewTypeRegistry()
	}
	return &Manager{
		contract: ecs.NewContract(log),
		log:      log,
		types:    types,
		view:     view,
		systems:  make([]System, 0, 16),
		byID:     make(map[int]System, 16),
	}
}

// Register appends s. Registering a second system of the same Go type is a
// contract violation. New systems start with no members; see Sync.
func Register[S System](m *Manager, s S) S {
	name := reflect.TypeFor[S]().String()
	id := ecs.TypeID[S](m.types, ecs.CategorySystem)
	_, dup := m.byID[id]
	m.contract.Requires(!dup, "system registered twice", zap.String("system", name))
	m.contract.Requires(s.Members() != nil, "system has no membership set", zap.String("system", name))

	m.byID[id] = s
	m.systems = append(m.systems, s)
	m.log.Debug("system registered",
		zap.String("system", name),
		zap.Int("system_id", id),
		zap.Uint32("signature", uint32(s.Signature())))
	return s
}

// Get returns the registered system of type S.
func Get[S System](m *Manager) S {
	var s S
	id, ok := m.types.Lookup(ecs.CategorySystem, reflect.TypeFor[S]())
	if ok {
		var found System
		found, ok = m.byID[id]
		if ok {
			s = found.(S)
		}
	}
	m.contract.Requires(ok, "system not registered", zap.String("system", reflect.TypeFor[S]().String()))
	return s
}

// Has reports whether a system of type S is registered.
func Has[S System](m *Manager) bool {
	id, ok := m.types.Lookup(ecs.CategorySystem, reflect.TypeFor[S]())
	if !ok {
		return false
	}
	_, ok = m.byID[id]
	return ok
}

// Systems returns the registered systems in registration order.
func (m *Manager) Systems() []System {
	out := make([]System, len(m.systems))
	copy(out, m.systems)
	return out
}

func (m *Manager) Len() int { return len(m.systems) }

// EntitySignatureChanged runs the enter/exit diff of e against every system.
// It must be called after the entity's signature has been updated: each
// system is compared with the signature current at the time it is visited,
// so mutations made by earlier callbacks are seen by later systems.
func (m *Manager) EntitySignatureChanged(e ecs.Entity) {
	systems := m.systems
	for _, s := range systems {
		if !m.view.IsAlive(e) {
			return
		}
		m.Sync(s, e)
	}
}

// Sync brings s's membership of e in line with e's current signature,
// firing OnEntityEnter or OnEntityExit as needed. Callbacks may mutate e;
// Sync re-evaluates after each callback until membership is stable, so every
// Enter is eventually paired with an Exit or Destroyed while e lives.
func (m *Manager) Sync(s System, e ecs.Entity) {
	members := s.Members()
	for m.view.IsAlive(e) {
		in := members.Contains(e)
		match := s.Signature() == m.view.Signature(e)
		switch {
		case in && !match:
			s.OnEntityExit(e)
			members.remove(e)
		case !in && match:
			// A nested Sync for the same entity leaves the add to the
			// outer call.
			if members.entering[e] {
				return
			}
			members.beginEnter(e)
			s.OnEntityEnter(e)
			members.endEnter(e)
			if m.view.IsAlive(e) {
				members.add(e)
			}
		default:
			return
		}
	}
	// e died inside a callback; EntityDestroyed already cleaned up members.
	members.remove(e)
}

// EntityDestroyed fires OnEntityDestroyed on every system tracking e and
// drops e from their membership. Call it before the entity's slot is reset.
func (m *Manager) EntityDestroyed(e ecs.Entity) {
	systems := m.systems
	for _, s := range systems {
		members := s.Members()
		if members.Contains(e) {
			s.OnEntityDestroyed(e)
			members.remove(e)
		}
	}
}
