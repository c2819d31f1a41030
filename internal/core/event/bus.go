package event

import (
	"reflect"
)

// Bus is a double-buffered event bus. Events emitted during tick N are
// delivered during tick N+1, after SwapBuffers rotates them to the front.
// The battle loop is single-threaded; the bus takes no locks.
type Bus struct {
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]any
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer.
func Emit[T any](b *Bus, event T) {
	t := typeKey[T]()
	b.back[t] = append(b.back[t], event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := typeKey[T]()
	b.handlers[t] = append(b.handlers[t], fn)
}

// Front returns the events of type T readable this tick.
func Front[T any](b *Bus) []T {
	events := b.front[typeKey[T]()]
	out := make([]T, len(events))
	for i, ev := range events {
		out[i] = ev.(T)
	}
	return out
}

// SwapBuffers rotates back to front and empties the new back buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// Reset drops every buffered event. Handlers stay subscribed.
func (b *Bus) Reset() {
	for k := range b.front {
		b.front[k] = b.front[k][:0]
	}
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed handlers.
func (b *Bus) DispatchAll() {
	for t, events := range b.front {
		handlers := b.handlers[t]
		for _, ev := range events {
			for _, h := range handlers {
				callHandler(h, ev)
			}
		}
	}
}

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}
