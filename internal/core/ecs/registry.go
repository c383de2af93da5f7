package ecs

import "go.uber.org/zap"

// StoreRegistry tracks one component store per component id and supports
// bulk cleanup when an entity is deleted.
type StoreRegistry struct {
	contract Contract
	stores   [MaxComponents]Store
	count    int
}

func NewStoreRegistry(c Contract) *StoreRegistry {
	return &StoreRegistry{contract: c}
}

// Register installs the store for its component id.
func (r *StoreRegistry) Register(s Store) {
	id := s.ComponentID()
	r.contract.Requires(id >= 0 && id < MaxComponents, "too many component types",
		zap.Int("component_id", id), zap.Int("max", MaxComponents))
	r.contract.Requires(r.stores[id] == nil, "component store registered twice", zap.Int("component_id", id))
	r.stores[id] = s
	r.count++
}

// Store returns the store registered for id, or nil.
func (r *StoreRegistry) Store(id int) Store {
	if id < 0 || id >= MaxComponents {
		return nil
	}
	return r.stores[id]
}

// Count returns the number of registered stores.
func (r *StoreRegistry) Count() int { return r.count }

// FreeAll frees e's value from every store whose bit is set in sig, in
// ascending component id order.
func (r *StoreRegistry) FreeAll(e Entity, sig Signature) {
	sig.Each(func(id int) {
		s := r.stores[id]
		r.contract.Assert(s != nil, "signature names a component without a store",
			entityField(e), zap.Int("component_id", id))
		s.Free(e)
	})
}
