package ecs

// The iterators below snapshot the driving store's entities before calling
// fn, and re-check membership before every call, so fn may add, remove or
// destroy freely. Entities that gain a component mid-iteration are not
// visited.

func snapshot[T any](s TypedStore[T]) []Entity {
	out := make([]Entity, 0, s.Len())
	s.Each(func(e Entity, _ *T) { out = append(out, e) })
	return out
}

// Each1 iterates over entities that have component A.
func Each1[A any](sa TypedStore[A], fn func(Entity, *A)) {
	for _, e := range snapshot(sa) {
		if sa.Has(e) {
			fn(e, sa.Get(e))
		}
	}
}

// Each2 iterates over entities that have both component A and B.
// It walks the smaller store and checks the larger one.
func Each2[A, B any](sa TypedStore[A], sb TypedStore[B], fn func(Entity, *A, *B)) {
	var ids []Entity
	if sa.Len() <= sb.Len() {
		ids = snapshot(sa)
	} else {
		ids = snapshot(sb)
	}
	for _, e := range ids {
		if sa.Has(e) && sb.Has(e) {
			fn(e, sa.Get(e), sb.Get(e))
		}
	}
}

// Each3 iterates over entities that have components A, B, and C.
func Each3[A, B, C any](sa TypedStore[A], sb TypedStore[B], sc TypedStore[C], fn func(Entity, *A, *B, *C)) {
	// Walk the smallest store
	var ids []Entity
	switch {
	case sa.Len() <= sb.Len() && sa.Len() <= sc.Len():
		ids = snapshot(sa)
	case sb.Len() <= sc.Len():
		ids = snapshot(sb)
	default:
		ids = snapshot(sc)
	}
	for _, e := range ids {
		if sa.Has(e) && sb.Has(e) && sc.Has(e) {
			fn(e, sa.Get(e), sb.Get(e), sc.Get(e))
		}
	}
}
