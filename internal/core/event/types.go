package event

import "github.com/mcgl/engine/internal/core/ecs"

// Lifecycle events published by the World.

type EntityCreated struct {
	Entity ecs.Entity
	Name   string
}

// EntityDeleted is published after the entity's slot has been recycled; the
// handle is already stale when handlers run.
type EntityDeleted struct {
	Entity ecs.Entity
	Name   string
}

// DestroyEntity asks the World to delete Entity. Publishing it lets scripts
// and input handlers destroy entities without holding the World.
type DestroyEntity struct {
	Entity ecs.Entity
}

// Input and window events fed in by the windowing layer.

type Key int32

type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

type MouseButton uint8

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

type KeyPressed struct {
	Key  Key
	Mods Modifiers
}

type KeyReleased struct {
	Key Key
}

type MouseMoved struct {
	X, Y float32
}

type MouseButtonPressed struct {
	Button MouseButton
	Mods   Modifiers
}

type MouseButtonReleased struct {
	Button MouseButton
}

type MouseScrolled struct {
	ScrollX, ScrollY float32
}

type WindowResized struct {
	Width, Height uint32
}

type WindowMaximized struct{}

type WindowClosed struct{}
