// Package events provides a small generic publish/subscribe mechanism. The generator publishes its progress through
// it so that the CLI, loggers and tests can observe a run without being coupled to the pipeline.
package events

import (
	"reflect"
	"sync"
)

// EventHandler defines a function type which handles an event of the generic type. A returned error stops the
// remaining handlers from running and is returned by EventEmitter.Publish.
type EventHandler[T any] func(T) error

// globalEventHandlers maps event type names to the handlers which are invoked any time any EventEmitter publishes an
// event of that type.
var globalEventHandlers = make(map[string][]any)

// globalEventHandlersLock synchronizes access to globalEventHandlers.
var globalEventHandlersLock sync.RWMutex

// SubscribeAny adds an EventHandler which is invoked whenever any emitter publishes an event of type T.
// Note: handlers subscribed here live for the remainder of the program and cannot be removed.
func SubscribeAny[T any](callback EventHandler[T]) {
	key := eventTypeName[T]()

	globalEventHandlersLock.Lock()
	defer globalEventHandlersLock.Unlock()
	globalEventHandlers[key] = append(globalEventHandlers[key], callback)
}

// eventTypeName returns the key used for events of type T in globalEventHandlers.
func eventTypeName[T any]() string {
	// Reflect on a nil pointer to obtain the type even for interface type parameters
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// EventEmitter describes a provider which can subscribe EventHandler methods for callback when an event of the generic
// type is published. It is safe for concurrent use.
type EventEmitter[T any] struct {
	// subscriptions defines the EventHandler methods which should be invoked when a new event is published to this
	// emitter.
	subscriptions []EventHandler[T]

	// lock serializes publishing and subscribing, so handlers never run concurrently for the same emitter.
	lock sync.Mutex
}

// Publish emits the provided event by calling every EventHandler subscribed to this emitter, followed by every
// handler subscribed globally through SubscribeAny. The first error returned by a handler is returned.
func (e *EventEmitter[T]) Publish(event T) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	for _, subscription := range e.subscriptions {
		if err := subscription(event); err != nil {
			return err
		}
	}

	// Copy the global handlers so they can subscribe further handlers without deadlocking
	globalEventHandlersLock.RLock()
	callbacks := append([]any(nil), globalEventHandlers[eventTypeName[T]()]...)
	globalEventHandlersLock.RUnlock()

	for _, callback := range callbacks {
		if err := callback.(EventHandler[T])(event); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe adds an EventHandler to the list of subscribed EventHandler objects for this emitter.
func (e *EventEmitter[T]) Subscribe(callback EventHandler[T]) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.subscriptions = append(e.subscriptions, callback)
}
