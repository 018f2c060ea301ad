// Package events carries the lifecycle notifications the world dispatches to
// entity listeners.
package events

import (
	"context"

	"better-dreadroot/internal/world"
)

type ID int

const (
	ObjectCreated ID = iota + 1
	EnteredCell
)

func (id ID) String() string {
	switch id {
	case ObjectCreated:
		return "object_created"
	case EnteredCell:
		return "entered_cell"
	default:
		return "unknown"
	}
}

// Trigger is any event that names an entity.
type Trigger interface {
	ID() ID
	Object() world.Ref
}

// Replacer is implemented by triggers whose source accepts a substitute
// entity once dispatch finishes.
type Replacer interface {
	SetReplacement(world.Ref)
}

// ObjectCreatedEvent fires after an entity is instantiated. Listeners may set
// ReplacementObject to have the world keep a different instance instead.
type ObjectCreatedEvent struct {
	Entity            world.Ref
	ReplacementObject world.Ref
}

func (e *ObjectCreatedEvent) ID() ID            { return ObjectCreated }
func (e *ObjectCreatedEvent) Object() world.Ref { return e.Entity }

func (e *ObjectCreatedEvent) SetReplacement(ref world.Ref) {
	e.ReplacementObject = ref
}

// Result is the instance the world should keep.
func (e *ObjectCreatedEvent) Result() world.Ref {
	return e.ReplacementObject.Or(e.Entity)
}

// EnteredCellEvent fires when an entity moves into a region.
type EnteredCellEvent struct {
	Entity world.Ref
	Region string
}

func (e *EnteredCellEvent) ID() ID            { return EnteredCell }
func (e *EnteredCellEvent) Object() world.Ref { return e.Entity }

// Listener receives the events it declares interest in. HandleEvent returns
// false to stop propagation to later listeners.
type Listener interface {
	WantsEvent(id ID) bool
	HandleEvent(ctx context.Context, trigger Trigger) bool
}

// Bus delivers events synchronously, in registration order.
type Bus struct {
	listeners []Listener
}

func NewBus(listeners ...Listener) *Bus {
	return &Bus{listeners: append([]Listener(nil), listeners...)}
}

func (b *Bus) Register(l Listener) {
	if l == nil {
		return
	}
	b.listeners = append(b.listeners, l)
}

func (b *Bus) Dispatch(ctx context.Context, trigger Trigger) {
	for _, l := range b.listeners {
		if !l.WantsEvent(trigger.ID()) {
			continue
		}
		if !l.HandleEvent(ctx, trigger) {
			return
		}
	}
}

// Created announces a new entity and returns the instance that should stand
// in the world afterwards.
func (b *Bus) Created(ctx context.Context, entity world.Ref) world.Ref {
	event := &ObjectCreatedEvent{Entity: entity}
	b.Dispatch(ctx, event)
	return event.Result()
}

// Entered announces that entity moved into region.
func (b *Bus) Entered(ctx context.Context, entity world.Ref, region string) {
	b.Dispatch(ctx, &EnteredCellEvent{Entity: entity, Region: region})
}
