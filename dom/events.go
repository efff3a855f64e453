package dom

import (
	"sync"
)

// Event is a host event delivered to listeners.
type Event struct {
	Type   string
	Target any
}

// Listener handles one event.
type Listener func(Event)

// ListenerOptions mirror the addEventListener options the host honours.
type ListenerOptions struct {
	Once    bool
	Passive bool
}

type eventListener struct {
	id      int
	fn      Listener
	options ListenerOptions
}

// EventTarget manages event listeners for a target.
type EventTarget struct {
	listeners map[string][]eventListener
	nextID    int
	mu        sync.RWMutex
}

// NewEventTarget creates a new EventTarget.
func NewEventTarget() *EventTarget {
	return &EventTarget{
		listeners: make(map[string][]eventListener),
	}
}

// AddEventListener registers fn for eventType and returns a function that
// unregisters it. Go functions are not comparable, so the returned remover
// replaces removeEventListener.
func (et *EventTarget) AddEventListener(eventType string, fn Listener, opts ...ListenerOptions) func() {
	var o ListenerOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	et.mu.Lock()
	et.nextID++
	id := et.nextID
	et.listeners[eventType] = append(et.listeners[eventType], eventListener{
		id:      id,
		fn:      fn,
		options: o,
	})
	et.mu.Unlock()

	return func() {
		et.remove(eventType, id)
	}
}

func (et *EventTarget) remove(eventType string, id int) {
	et.mu.Lock()
	defer et.mu.Unlock()

	listeners := et.listeners[eventType]
	for i, l := range listeners {
		if l.id == id {
			kept := make([]eventListener, 0, len(listeners)-1)
			kept = append(kept, listeners[:i]...)
			et.listeners[eventType] = append(kept, listeners[i+1:]...)
			return
		}
	}
}

// DispatchEvent calls every listener registered for ev.Type, in registration
// order, and returns how many were called. Listeners added while dispatching
// are not called for this event; listeners removed while dispatching are
// skipped if they have not run yet.
func (et *EventTarget) DispatchEvent(ev Event) int {
	et.mu.RLock()
	listeners := make([]eventListener, len(et.listeners[ev.Type]))
	copy(listeners, et.listeners[ev.Type])
	et.mu.RUnlock()

	called := 0
	for _, l := range listeners {
		if !et.has(ev.Type, l.id) {
			continue
		}
		if l.options.Once {
			et.remove(ev.Type, l.id)
		}
		l.fn(ev)
		called++
	}
	return called
}

func (et *EventTarget) has(eventType string, id int) bool {
	et.mu.RLock()
	defer et.mu.RUnlock()
	for _, l := range et.listeners[eventType] {
		if l.id == id {
			return true
		}
	}
	return false
}

// ListenerCount returns the number of listeners registered for eventType.
func (et *EventTarget) ListenerCount(eventType string) int {
	et.mu.RLock()
	defer et.mu.RUnlock()
	return len(et.listeners[eventType])
}
