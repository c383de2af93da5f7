package ecs

import "go.uber.org/zap"

// LayerRegistry maps layer names to layer indices in registration order.
type LayerRegistry struct {
	contract Contract
	index    map[string]int
	names    []string
}

func NewLayerRegistry(c Contract) *LayerRegistry {
	return &LayerRegistry{
		contract: c,
		index:    make(map[string]int, MaxLayers),
	}
}

// AddLayerName registers a new layer and returns its index.
func (r *LayerRegistry) AddLayerName(name string) int {
	_, exists := r.index[name]
	r.contract.Requires(!exists, "layer already exists", zap.String("layer", name))
	r.contract.Requires(len(r.names) < MaxLayers, "too many layers", zap.Int("max", MaxLayers))
	idx := len(r.names)
	r.index[name] = idx
	r.names = append(r.names, name)
	return idx
}

func (r *LayerRegistry) LayerIndexByName(name string) int {
	idx, ok := r.index[name]
	r.contract.Requires(ok, "layer does not exist", zap.String("layer", name))
	return idx
}

// LayerMaskByName returns a mask with only the named layer set.
func (r *LayerRegistry) LayerMaskByName(name string) LayerMask {
	return LayerMask(0).Set(r.LayerIndexByName(name))
}

// MaskOf returns the union of the named layers.
func (r *LayerRegistry) MaskOf(names ...string) LayerMask {
	var m LayerMask
	for _, n := range names {
		m = m.Union(r.LayerMaskByName(n))
	}
	return m
}

func (r *LayerRegistry) HasLayer(name string) bool {
	_, ok := r.index[name]
	return ok
}

func (r *LayerRegistry) LayerCount() int { return len(r.names) }

// Names returns the layer names in index order.
func (r *LayerRegistry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
