package event

import (
	"reflect"
	"testing"

	"github.com/mcgl/engine/internal/core/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus() *Bus { return NewBus(nil, nil) }

func TestInvokeDeliversToEverySubscriber(t *testing.T) {
	b := newTestBus()
	var got []string
	Subscribe(b, func(e KeyPressed) { got = append(got, "a") })
	Subscribe(b, func(e KeyPressed) { got = append(got, "b") })
	Subscribe(b, func(e KeyReleased) { got = append(got, "released") })

	Invoke(b, KeyPressed{Key: 65})
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 2, SubscriberCount[KeyPressed](b))
	assert.Equal(t, 0, SubscriberCount[MouseMoved](b))
}

func TestInvokeWithoutSubscribers(t *testing.T) {
	b := newTestBus()
	assert.NotPanics(t, func() { Invoke(b, WindowClosed{}) })
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := newTestBus()
	counts := make([]int, 4)
	handles := make([]Handle, 4)
	for i := range handles {
		i := i
		handles[i] = Subscribe(b, func(MouseMoved) { counts[i]++ })
	}

	Invoke(b, MouseMoved{})
	Unsubscribe[MouseMoved](b, handles[1])
	Invoke(b, MouseMoved{})
	Invoke(b, MouseMoved{})

	// Exactly one call per Invoke while subscribed, none afterwards. Order
	// after an unsubscribe is not checked.
	assert.Equal(t, []int{3, 1, 3, 3}, counts)
	assert.Equal(t, 3, SubscriberCount[MouseMoved](b))
}

func TestUnsubscribeSwapsLastIntoHole(t *testing.T) {
	b := newTestBus()
	var order []int
	h0 := Subscribe(b, func(WindowResized) { order = append(order, 0) })
	Subscribe(b, func(WindowResized) { order = append(order, 1) })
	Subscribe(b, func(WindowResized) { order = append(order, 2) })

	Unsubscribe[WindowResized](b, h0)
	Invoke(b, WindowResized{})
	assert.ElementsMatch(t, []int{1, 2}, order)
}

func TestHandlesAreRecycled(t *testing.T) {
	b := newTestBus()
	h := Subscribe(b, func(KeyReleased) {})
	Unsubscribe[KeyReleased](b, h)
	again := Subscribe(b, func(KeyReleased) {})
	assert.Equal(t, h, again)
}

func TestUnknownHandleIsAContractViolation(t *testing.T) {
	b := newTestBus()
	require.Panics(t, func() { Unsubscribe[KeyPressed](b, 9) })

	h := Subscribe(b, func(KeyPressed) {})
	Unsubscribe[KeyPressed](b, h)
	require.Panics(t, func() { Unsubscribe[KeyPressed](b, h) })
	// Handles are per event type.
	h2 := Subscribe(b, func(KeyPressed) {})
	require.Panics(t, func() { Unsubscribe[KeyReleased](b, h2) })
}

func TestUnsubscribeDuringDelivery(t *testing.T) {
	b := newTestBus()
	calls := map[string]int{}
	var hLate Handle
	Subscribe(b, func(MouseScrolled) {
		calls["first"]++
		if calls["first"] == 1 {
			Unsubscribe[MouseScrolled](b, hLate)
		}
	})
	hLate = Subscribe(b, func(MouseScrolled) { calls["late"]++ })

	Invoke(b, MouseScrolled{})
	Invoke(b, MouseScrolled{})
	assert.Equal(t, 2, calls["first"])
	assert.Equal(t, 0, calls["late"])
}

func TestSubscribeDuringDeliveryWaitsForNextEvent(t *testing.T) {
	b := newTestBus()
	added := 0
	Subscribe(b, func(WindowMaximized) {
		Subscribe(b, func(WindowMaximized) { added++ })
	})
	Invoke(b, WindowMaximized{})
	assert.Equal(t, 0, added)
	Invoke(b, WindowMaximized{})
	assert.Equal(t, 1, added)
}

func TestHandlerPanicPropagates(t *testing.T) {
	b := newTestBus()
	after := false
	Subscribe(b, func(KeyPressed) { panic("bad handler") })
	Subscribe(b, func(KeyPressed) { after = true })
	assert.PanicsWithValue(t, "bad handler", func() { Invoke(b, KeyPressed{}) })
	assert.False(t, after)
}

func TestEmitIsDeferredUntilDispatch(t *testing.T) {
	b := newTestBus()
	var got []ecs.Entity
	Subscribe(b, func(e EntityCreated) {
		got = append(got, e.Entity)
		if e.Name == "spawner" {
			Emit(b, EntityCreated{Entity: 99, Name: "child"})
		}
	})

	Emit(b, EntityCreated{Entity: 1, Name: "spawner"})
	Emit(b, EntityCreated{Entity: 2})
	assert.Empty(t, got)
	assert.Equal(t, 2, b.Pending())

	assert.Equal(t, 2, b.Dispatch())
	assert.Equal(t, []ecs.Entity{1, 2}, got)
	assert.Equal(t, 1, b.Pending())

	assert.Equal(t, 1, b.Dispatch())
	assert.Equal(t, []ecs.Entity{1, 2, 99}, got)
	assert.Equal(t, 0, b.Dispatch())
}

func TestDispatchIsNotReentrant(t *testing.T) {
	b := newTestBus()
	Subscribe(b, func(WindowClosed) { b.Dispatch() })
	Emit(b, WindowClosed{})
	require.Panics(t, func() { b.Dispatch() })
}

func TestSharedTypeRegistry(t *testing.T) {
	types := ecs.NewTypeRegistry()
	ecs.TypeID[int](types, ecs.CategoryComponent)
	b := NewBus(types, nil)
	Subscribe(b, func(KeyPressed) {})
	id, ok := types.Lookup(ecs.CategoryEvent, reflectTypeOf[KeyPressed]())
	require.True(t, ok)
	assert.Equal(t, 0, id)
}

func reflectTypeOf[T any]() reflect.Type { return reflect.TypeFor[T]() }
