package ecs

import "math/bits"

// Signature marks which component types an entity owns: bit i is set iff the
// entity holds a value of the component type with id i.
type Signature uint32

func (s Signature) Set(id int) Signature   { return s | 1<<uint(id) }
func (s Signature) Clear(id int) Signature { return s &^ (1 << uint(id)) }
func (s Signature) Test(id int) bool       { return s&(1<<uint(id)) != 0 }
func (s Signature) Count() int             { return bits.OnesCount32(uint32(s)) }
func (s Signature) IsEmpty() bool          { return s == 0 }

// Each calls fn for every set bit in ascending id order.
func (s Signature) Each(fn func(id int)) {
	for v := uint32(s); v != 0; v &= v - 1 {
		fn(bits.TrailingZeros32(v))
	}
}

// LayerMask is the set of layers an entity belongs to.
type LayerMask uint32

func (m LayerMask) Set(idx int) LayerMask       { return m | 1<<uint(idx) }
func (m LayerMask) Clear(idx int) LayerMask     { return m &^ (1 << uint(idx)) }
func (m LayerMask) Test(idx int) bool           { return m&(1<<uint(idx)) != 0 }
func (m LayerMask) Union(o LayerMask) LayerMask { return m | o }
func (m LayerMask) Intersects(o LayerMask) bool { return m&o != 0 }
