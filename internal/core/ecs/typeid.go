package ecs

import (
	"reflect"
	"sync"
)

// Category names an independent id space in a TypeRegistry.
type Category uint8

const (
	CategoryComponent Category = iota
	CategorySystem
	CategoryEvent
	numCategories
)

func (c Category) String() string {
	switch c {
	case CategoryComponent:
		return "component"
	case CategorySystem:
		return "system"
	case CategoryEvent:
		return "event"
	default:
		return "unknown"
	}
}

// TypeRegistry hands out small integer ids to Go types, per category, in
// first-request order starting at 0. Ids are never reclaimed.
//
// A registry belongs to whoever creates it (normally a World) and may be
// shared between worlds; the mutex makes first use from several goroutines
// safe.
type TypeRegistry struct {
	mu  sync.Mutex
	ids [numCategories]map[reflect.Type]int
}

func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{}
	for i := range r.ids {
		r.ids[i] = make(map[reflect.Type]int, 16)
	}
	return r
}

// ID returns the id of t within category c, assigning the next free id on
// first request.
func (r *TypeRegistry) ID(c Category, t reflect.Type) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.ids[c]
	if id, ok := m[t]; ok {
		return id
	}
	id := len(m)
	m[t] = id
	return id
}

// Lookup returns the id of t without assigning one.
func (r *TypeRegistry) Lookup(c Category, t reflect.Type) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.ids[c][t]
	return id, ok
}

// Count reports how many ids category c has issued.
func (r *TypeRegistry) Count(c Category) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids[c])
}

// TypeID is the typed form of ID.
func TypeID[T any](r *TypeRegistry, c Category) int {
	return r.ID(c, reflect.TypeFor[T]())
}
