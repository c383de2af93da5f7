package event

import (
	"reflect"

	"github.com/mcgl/engine/internal/core/ecs"
	"go.uber.org/zap"
)

// Handle identifies one subscription within one event type. Handles are
// recycled after Unsubscribe, so a handle must not be used once released.
type Handle uint32

type subscription struct {
	handle Handle
	fn     any // func(T)
	active bool
}

// subscriberList is a dense list of subscriptions for one event type. Removal
// swaps the last subscription into the freed slot, so delivery order is
// insertion order only until the first Unsubscribe.
type subscriberList struct {
	subs  []*subscription
	index map[Handle]int
	free  []Handle
	next  Handle
}

func newSubscriberList() *subscriberList {
	return &subscriberList{
		subs:  make([]*subscription, 0, 4),
		index: make(map[Handle]int, 4),
		next:  1,
	}
}

func (l *subscriberList) add(fn any) Handle {
	var h Handle
	if n := len(l.free); n > 0 {
		h = l.free[n-1]
		l.free = l.free[:n-1]
	} else {
		h = l.next
		l.next++
	}
	l.index[h] = len(l.subs)
	l.subs = append(l.subs, &subscription{handle: h, fn: fn, active: true})
	return h
}

func (l *subscriberList) remove(h Handle) bool {
	idx, ok := l.index[h]
	if !ok {
		return false
	}
	last := len(l.subs) - 1
	l.subs[idx].active = false
	moved := l.subs[last]
	l.subs[idx] = moved
	l.index[moved.handle] = idx
	l.subs[last] = nil
	l.subs = l.subs[:last]
	delete(l.index, h)
	l.free = append(l.free, h)
	return true
}

// Bus is a typed publish/subscribe bus. Invoke delivers synchronously on the
// caller's stack. Emit queues into a back buffer that Dispatch delivers, so
// events emitted in tick N are handled when Dispatch runs in tick N+1.
type Bus struct {
	contract ecs.Contract
	types    *ecs.TypeRegistry
	lists    []*subscriberList // by event type id
	front    []func()
	back     []func()
	draining bool
}

// NewBus creates a bus whose event type ids come from types. A nil registry
// gives the bus its own.
func NewBus(types *ecs.TypeRegistry, log *zap.Logger) *Bus {
	if types == nil {
		types = ecs.NewTypeRegistry()
	}
	return &Bus{
		contract: ecs.NewContract(log),
		types:    types,
		back:     make([]func(), 0, 64),
	}
}

func (b *Bus) list(id int, create bool) *subscriberList {
	if id >= len(b.lists) {
		if !create {
			return nil
		}
		b.lists = append(b.lists, make([]*subscriberList, id+1-len(b.lists))...)
	}
	if b.lists[id] == nil && create {
		b.lists[id] = newSubscriberList()
	}
	return b.lists[id]
}

func typeName[T any]() string { return reflect.TypeFor[T]().String() }

// Subscribe registers fn for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) Handle {
	b.contract.Requires(fn != nil, "nil event handler", zap.String("event", typeName[T]()))
	id := ecs.TypeID[T](b.types, ecs.CategoryEvent)
	return b.list(id, true).add(fn)
}

// Unsubscribe releases h. Releasing a handle that is not subscribed is a
// contract violation.
func Unsubscribe[T any](b *Bus, h Handle) {
	var l *subscriberList
	if id, ok := b.types.Lookup(ecs.CategoryEvent, reflect.TypeFor[T]()); ok {
		l = b.list(id, false)
	}
	b.contract.Requires(l != nil && l.remove(h), "unknown subscription handle",
		zap.String("event", typeName[T]()), zap.Uint32("handle", uint32(h)))
}

// Invoke calls every handler currently subscribed to T, in list order. The
// list is snapshotted first: handlers subscribed during delivery wait for the
// next event, handlers unsubscribed during delivery are skipped. A panicking
// handler aborts delivery and propagates to the caller.
func Invoke[T any](b *Bus, ev T) {
	id, ok := b.types.Lookup(ecs.CategoryEvent, reflect.TypeFor[T]())
	if !ok {
		return
	}
	l := b.list(id, false)
	if l == nil || len(l.subs) == 0 {
		return
	}
	subs := make([]*subscription, len(l.subs))
	copy(subs, l.subs)
	for _, s := range subs {
		if s.active {
			s.fn.(func(T))(ev)
		}
	}
}

// Emit queues ev for the next Dispatch.
func Emit[T any](b *Bus, ev T) {
	b.back = append(b.back, func() { Invoke(b, ev) })
}

// Dispatch delivers every event emitted before the call, in emission order,
// and returns how many were delivered. Events emitted by handlers during
// Dispatch are held for the following call.
func (b *Bus) Dispatch() int {
	b.contract.Requires(!b.draining, "Dispatch called from an event handler")
	b.draining = true
	defer func() { b.draining = false }()

	b.front, b.back = b.back, b.front[:0]
	n := len(b.front)
	for i, deliver := range b.front {
		deliver()
		b.front[i] = nil
	}
	return n
}

// Pending returns how many emitted events await Dispatch.
func (b *Bus) Pending() int { return len(b.back) }

// SubscriberCount returns how many handlers are subscribed to T.
func SubscriberCount[T any](b *Bus) int {
	id, ok := b.types.Lookup(ecs.CategoryEvent, reflect.TypeFor[T]())
	if !ok {
		return 0
	}
	if l := b.list(id, false); l != nil {
		return len(l.subs)
	}
	return 0
}
