package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreRegistryFreeAll(t *testing.T) {
	c := NewContract(nil)
	r := NewStoreRegistry(c)
	pos := NewFixedStore[position](0, c)
	names := NewFixedStore[string](2, c)
	r.Register(pos)
	r.Register(names)
	assert.Equal(t, 2, r.Count())
	assert.Nil(t, r.Store(1))
	assert.Nil(t, r.Store(MaxComponents))

	e := newEntity(0, 1)
	other := newEntity(1, 1)
	pos.Allocate(e, position{})
	pos.Allocate(other, position{X: 3})
	names.Allocate(e, "e")

	r.FreeAll(e, Signature(0).Set(0).Set(2))
	assert.False(t, pos.Has(e))
	assert.False(t, names.Has(e))
	assert.Equal(t, position{X: 3}, *pos.Get(other))
}

func TestStoreRegistryRejectsDuplicates(t *testing.T) {
	c := NewContract(nil)
	r := NewStoreRegistry(c)
	r.Register(NewFixedStore[int](0, c))
	requireViolation(t, func() { r.Register(NewFixedStore[int](0, c)) })
	requireViolation(t, func() { r.Register(NewFixedStore[int](MaxComponents, c)) })
	requireViolation(t, func() { r.FreeAll(newEntity(0, 1), Signature(0).Set(5)) })
}

func TestLayerRegistry(t *testing.T) {
	r := NewLayerRegistry(NewContract(nil))
	assert.Equal(t, 0, r.AddLayerName("default"))
	assert.Equal(t, 1, r.AddLayerName("ui"))
	assert.Equal(t, 2, r.LayerCount())
	assert.Equal(t, 1, r.LayerIndexByName("ui"))
	assert.Equal(t, LayerMask(0b10), r.LayerMaskByName("ui"))
	assert.Equal(t, LayerMask(0b11), r.MaskOf("default", "ui"))
	assert.True(t, r.HasLayer("ui"))
	assert.Equal(t, []string{"default", "ui"}, r.Names())

	requireViolation(t, func() { r.AddLayerName("ui") })
	requireViolation(t, func() { r.LayerIndexByName("missing") })
}

func TestLayerRegistryLimit(t *testing.T) {
	r := NewLayerRegistry(NewContract(nil))
	for i := 0; i < MaxLayers; i++ {
		r.AddLayerName(string(rune('a' + i)))
	}
	requireViolation(t, func() { r.AddLayerName("one-too-many") })
}
