// Package frame provides the next-frame primitive the scroll engine uses to
// separate layout reads from the DOM writes callbacks perform.
package frame

import (
	"sync"
)

// Scheduler runs a callback once, on the next frame.
type Scheduler interface {
	RequestFrame(fn func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(fn func())

// RequestFrame calls f(fn).
func (f SchedulerFunc) RequestFrame(fn func()) {
	f(fn)
}

// Queue is a single-shot FIFO of frame callbacks. Every callback runs once,
// on the first Flush after it was requested.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	frames  uint64
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		pending: make([]func(), 0),
	}
}

// RequestFrame queues fn for the next Flush.
func (q *Queue) RequestFrame(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, fn)
}

// Flush runs the callbacks that were queued before it was called. Callbacks
// requested while flushing run on the following Flush. A panicking callback
// propagates; callbacks behind it stay queued.
// Returns the number of callbacks run.
func (q *Queue) Flush() int {
	q.mu.Lock()
	n := len(q.pending)
	q.frames++
	q.mu.Unlock()

	ran := 0
	for ; ran < n; ran++ {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			break
		}
		fn := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		fn()
	}
	return ran
}

// Pending returns the number of queued callbacks.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Frames returns how many times Flush has been called.
func (q *Queue) Frames() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.frames
}

// Clear drops every queued callback.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = q.pending[:0]
}
