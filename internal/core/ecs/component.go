package ecs

import (
	"reflect"

	"go.uber.org/zap"
)

// Large is the capability that selects the growable storage strategy. Embed
// LargeComponent in component types that are too big or too variable in size
// to pre-allocate MaxEntities copies of.
type Large interface {
	largeComponent()
}

// LargeComponent is embedded by component types that want GrowableStore.
type LargeComponent struct{}

func (LargeComponent) largeComponent() {}

// IsLarge reports whether T carries the Large capability.
func IsLarge[T any]() bool {
	return reflect.TypeFor[T]().Implements(reflect.TypeFor[Large]())
}

// Store is the type-erased view of a component store, used to free an
// entity's components by id when the entity is deleted.
type Store interface {
	ComponentID() int
	Has(e Entity) bool
	Free(e Entity)
	Len() int
}

// TypedStore is the contract shared by both storage strategies. Values are
// densely packed in [0, Len()); Free moves the last value into the freed slot,
// so pointers returned by Allocate and Get are valid only until the next
// Allocate or Free on the same store.
type TypedStore[T any] interface {
	Store
	Allocate(e Entity, v T) *T
	Get(e Entity) *T
	Each(fn func(Entity, *T))
}

// NewStore picks the storage strategy for T once, when the store is created.
func NewStore[T any](componentID int, c Contract) TypedStore[T] {
	if IsLarge[T]() {
		return NewGrowableStore[T](componentID, c)
	}
	return NewFixedStore[T](componentID, c)
}

// denseIndex holds the entity <-> dense index bijection shared by both
// strategies. Exactly the indices [0, size) are mapped.
type denseIndex struct {
	contract      Contract
	componentID   int
	typeName      string
	entityToIndex map[Entity]int
	indexToEntity map[int]Entity
	size          int
}

func newDenseIndex(componentID int, typeName string, c Contract) denseIndex {
	return denseIndex{
		contract:      c,
		componentID:   componentID,
		typeName:      typeName,
		entityToIndex: make(map[Entity]int, 64),
		indexToEntity: make(map[int]Entity, 64),
	}
}

func (d *denseIndex) ComponentID() int { return d.componentID }
func (d *denseIndex) Len() int         { return d.size }

func (d *denseIndex) Has(e Entity) bool {
	_, ok := d.entityToIndex[e]
	return ok
}

// push maps e to the next dense index and returns it.
func (d *denseIndex) push(e Entity) int {
	d.contract.Requires(!d.Has(e), "component allocated twice",
		entityField(e), zap.String("component", d.typeName))
	idx := d.size
	d.entityToIndex[e] = idx
	d.indexToEntity[idx] = e
	d.size++
	return idx
}

// swapRemove unmaps e and repoints the entity that lived at the last index
// to e's old index. It returns (freed index, last index) so the caller can
// move the value.
func (d *denseIndex) swapRemove(e Entity) (int, int) {
	idx, ok := d.entityToIndex[e]
	d.contract.Requires(ok, "component freed but not present",
		entityField(e), zap.String("component", d.typeName))
	last := d.size - 1
	d.contract.Assert(idx >= 0 && idx <= last, "dense index out of range",
		zap.Int("index", idx), zap.Int("size", d.size))

	moved := d.indexToEntity[last]
	d.entityToIndex[moved] = idx
	d.indexToEntity[idx] = moved

	delete(d.entityToIndex, e)
	delete(d.indexToEntity, last)
	d.size--
	return idx, last
}

func (d *denseIndex) index(e Entity) int {
	idx, ok := d.entityToIndex[e]
	d.contract.Requires(ok, "entity does not have component",
		entityField(e), zap.String("component", d.typeName))
	d.contract.Assert(idx >= 0 && idx < d.size, "dense index out of range",
		zap.Int("index", idx), zap.Int("size", d.size))
	return idx
}

// FixedStore keeps values in an array sized MaxEntities. Access never
// reallocates, at the cost of the full array regardless of occupancy.
type FixedStore[T any] struct {
	denseIndex
	data *[MaxEntities]T
}

func NewFixedStore[T any](componentID int, c Contract) *FixedStore[T] {
	return &FixedStore[T]{
		denseIndex: newDenseIndex(componentID, reflect.TypeFor[T]().String(), c),
		data:       new([MaxEntities]T),
	}
}

func (s *FixedStore[T]) Allocate(e Entity, v T) *T {
	s.contract.Requires(s.size < MaxEntities, "fixed store full", zap.String("component", s.typeName))
	idx := s.push(e)
	s.data[idx] = v
	return &s.data[idx]
}

func (s *FixedStore[T]) Free(e Entity) {
	idx, last := s.swapRemove(e)
	s.data[idx] = s.data[last]
	var zero T
	s.data[last] = zero
}

func (s *FixedStore[T]) Get(e Entity) *T {
	return &s.data[s.index(e)]
}

// Each visits live values in dense order. fn must not allocate or free on
// this store.
func (s *FixedStore[T]) Each(fn func(Entity, *T)) {
	for i := 0; i < s.size; i++ {
		fn(s.indexToEntity[i], &s.data[i])
	}
}

// GrowableStore keeps values in a slice that grows and shrinks with the live
// count.
type GrowableStore[T any] struct {
	denseIndex
	data []T
}

func NewGrowableStore[T any](componentID int, c Contract) *GrowableStore[T] {
	return &GrowableStore[T]{
		denseIndex: newDenseIndex(componentID, reflect.TypeFor[T]().String(), c),
	}
}

func (s *GrowableStore[T]) Allocate(e Entity, v T) *T {
	idx := s.push(e)
	s.data = append(s.data, v)
	s.contract.Ensures(len(s.data) == idx+1, "growable store out of step",
		zap.Int("len", len(s.data)), zap.Int("index", idx))
	return &s.data[idx]
}

func (s *GrowableStore[T]) Free(e Entity) {
	idx, last := s.swapRemove(e)
	s.data[idx] = s.data[last]
	var zero T
	s.data[last] = zero
	s.data = s.data[:last]
}

func (s *GrowableStore[T]) Get(e Entity) *T {
	return &s.data[s.index(e)]
}

func (s *GrowableStore[T]) Each(fn func(Entity, *T)) {
	for i := 0; i < s.size; i++ {
		fn(s.indexToEntity[i], &s.data[i])
	}
}

var (
	_ TypedStore[struct{}] = (*FixedStore[struct{}])(nil)
	_ TypedStore[struct{}] = (*GrowableStore[struct{}])(nil)
)
