package ecs

// Capacity limits. Signature and LayerMask are 32-bit sets, so the component
// and layer limits cannot be raised without widening those types.
const (
	MaxEntities   = 1000
	MaxComponents = 32
	MaxLayers     = 32
)
