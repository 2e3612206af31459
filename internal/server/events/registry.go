// Package events implements a small publish point for named events. The
// registry is an explicit object owned by the composition root; components
// subscribe to event types and the timer dispatcher (or anything else) fires
// them.
package events

import (
	"context"
	"sync"
)

// EventType names a class of events fired through the registry.
type EventType string

// EventTimer is fired once per system timer tick.
const EventTimer EventType = "timer"

// Handler receives a fired event.
type Handler func(ctx context.Context, event EventType)

type subscription struct {
	id      int
	event   EventType
	handler Handler
}

// Registry dispatches named events to subscribed handlers. Handlers run
// synchronously, in subscription order, on the caller's goroutine.
type Registry struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Subscribe registers handler for event and returns a subscription ID
// usable with Unsubscribe.
func (r *Registry) Subscribe(event EventType, handler Handler) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.subs = append(r.subs, subscription{id: r.nextID, event: event, handler: handler})
	return r.nextID
}

// Unsubscribe removes a subscription by ID. Unknown IDs are ignored.
func (r *Registry) Unsubscribe(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.subs {
		if s.id == id {
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return
		}
	}
}

// FireEvent delivers event to every matching subscriber.
func (r *Registry) FireEvent(ctx context.Context, event EventType) {
	r.mu.RLock()
	handlers := make([]Handler, 0, len(r.subs))
	for _, s := range r.subs {
		if s.event == event {
			handlers = append(handlers, s.handler)
		}
	}
	r.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, event)
	}
}
