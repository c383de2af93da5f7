package world

import "github.com/mcgl/engine/internal/core/event"

func Subscribe[T any](w *World, fn func(T)) event.Handle {
	return event.Subscribe(w.bus, fn)
}

func Unsubscribe[T any](w *World, h event.Handle) {
	event.Unsubscribe[T](w.bus, h)
}

// Invoke delivers ev to every subscriber before returning.
func Invoke[T any](w *World, ev T) {
	event.Invoke(w.bus, ev)
}

// Emit queues ev for the next Update.
func Emit[T any](w *World, ev T) {
	event.Emit(w.bus, ev)
}
