package world

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/mcgl/engine/internal/core/ecs"
)

// ComponentID returns T's component id in w's type registry.
func ComponentID[T any](w *World) int {
	id := ecs.TypeID[T](w.types, ecs.CategoryComponent)
	w.contract.Requires(id < ecs.MaxComponents, "too many component types",
		zap.String("component", reflect.TypeFor[T]().String()), zap.Int("component_id", id))
	return id
}

// storeFor returns T's store, creating it on first use. The registry is
// keyed by T's id, so the assertion cannot fail.
func storeFor[T any](w *World) ecs.TypedStore[T] {
	id := ComponentID[T](w)
	if s := w.stores.Store(id); s != nil {
		return s.(ecs.TypedStore[T])
	}
	s := ecs.NewStore[T](id, w.contract)
	w.stores.Register(s)
	w.log.Debug("component store created",
		zap.String("component", reflect.TypeFor[T]().String()),
		zap.Int("component_id", id),
		zap.Bool("large", ecs.IsLarge[T]()))
	return s
}

// AddComponent attaches v to e and returns a pointer to the stored value.
// Adding a component e already has is a contract violation.
//
// The pointer is valid until the next add or remove of T on any entity.
func AddComponent[T any](w *World, e ecs.Entity, v T) *T {
	w.requireMutable(e)
	s := storeFor[T](w)
	id := s.ComponentID()
	w.contract.Requires(!w.entities.HasComponent(e, id), "component added twice",
		zap.Stringer("entity", e), zap.String("component", reflect.TypeFor[T]().String()))

	w.entities.AddComponent(e, id)
	s.Allocate(e, v)
	w.systems.EntitySignatureChanged(e)
	if !w.entities.IsAlive(e) || !s.Has(e) {
		// A system callback removed it again or deleted e.
		return nil
	}
	return s.Get(e)
}

// RemoveComponent detaches T from e. Systems are notified after the value is
// freed, against e's new signature.
func RemoveComponent[T any](w *World, e ecs.Entity) {
	w.requireMutable(e)
	s := storeFor[T](w)
	id := s.ComponentID()
	w.contract.Requires(w.entities.HasComponent(e, id), "component not present",
		zap.Stringer("entity", e), zap.String("component", reflect.TypeFor[T]().String()))

	w.entities.RemoveComponent(e, id)
	s.Free(e)
	w.systems.EntitySignatureChanged(e)
}

func HasComponent[T any](w *World, e ecs.Entity) bool {
	return w.entities.HasComponent(e, ComponentID[T](w))
}

// GetComponent returns a pointer to e's T. The component must be present.
func GetComponent[T any](w *World, e ecs.Entity) *T {
	id := ComponentID[T](w)
	w.contract.Requires(w.entities.HasComponent(e, id), "component not present",
		zap.Stringer("entity", e), zap.String("component", reflect.TypeFor[T]().String()))
	return storeFor[T](w).Get(e)
}

// GetComponentConst returns a copy of e's T.
func GetComponentConst[T any](w *World, e ecs.Entity) T {
	return *GetComponent[T](w, e)
}

// TryGetComponent returns e's T, or nil when e does not have one.
func TryGetComponent[T any](w *World, e ecs.Entity) *T {
	if !w.entities.IsAlive(e) || !HasComponent[T](w, e) {
		return nil
	}
	return storeFor[T](w).Get(e)
}

// ComponentCount returns how many entities have a T.
func ComponentCount[T any](w *World) int {
	return storeFor[T](w).Len()
}

func Each[A any](w *World, fn func(ecs.Entity, *A)) {
	ecs.Each1(storeFor[A](w), fn)
}

func Each2[A, B any](w *World, fn func(ecs.Entity, *A, *B)) {
	ecs.Each2(storeFor[A](w), storeFor[B](w), fn)
}

func Each3[A, B, C any](w *World, fn func(ecs.Entity, *A, *B, *C)) {
	ecs.Each3(storeFor[A](w), storeFor[B](w), storeFor[C](w), fn)
}

// SignatureBuilder accumulates component ids into a signature.
type SignatureBuilder struct {
	w   *World
	sig ecs.Signature
}

func (w *World) NewSignature() *SignatureBuilder { return &SignatureBuilder{w: w} }

func Include[T any](b *SignatureBuilder) *SignatureBuilder {
	b.sig = b.sig.Set(ComponentID[T](b.w))
	return b
}

func (b *SignatureBuilder) Build() ecs.Signature { return b.sig }

func Signature1[A any](w *World) ecs.Signature {
	return Include[A](w.NewSignature()).Build()
}

func Signature2[A, B any](w *World) ecs.Signature {
	return Include[B](Include[A](w.NewSignature())).Build()
}

func Signature3[A, B, C any](w *World) ecs.Signature {
	return Include[C](Include[B](Include[A](w.NewSignature()))).Build()
}
