package frame

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultInterval approximates a 60fps display.
const DefaultInterval = 16 * time.Millisecond

// ErrLoopClosed is returned when submitting to a closed Loop.
var ErrLoopClosed = errors.New("frame loop closed")

// Loop owns the single goroutine that runs host tasks (scroll and resize
// events) and frame callbacks. Everything the engine does for one registry
// happens on that goroutine, in submission order, with frames flushed on
// every tick.
type Loop struct {
	queue    *Queue
	tasks    chan func()
	interval time.Duration
	log      *zap.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithInterval sets the frame interval.
func WithInterval(d time.Duration) LoopOption {
	return func(l *Loop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) LoopOption {
	return func(l *Loop) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLoop creates a loop. It does nothing until Run is called.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		queue:    NewQueue(),
		tasks:    make(chan func(), 256),
		interval: DefaultInterval,
		log:      zap.NewNop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RequestFrame queues fn for the next frame.
func (l *Loop) RequestFrame(fn func()) {
	l.queue.RequestFrame(fn)
}

// Queue returns the frame queue the loop flushes.
func (l *Loop) Queue() *Queue {
	return l.queue
}

// Submit queues a task to run on the loop goroutine. It blocks while the task
// buffer is full.
func (l *Loop) Submit(fn func()) error {
	select {
	case <-l.done:
		return ErrLoopClosed
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrLoopClosed
	}
}

// Call runs fn on the loop goroutine and waits for it to return.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Submit(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLoopClosed
	}
}

// Run processes tasks and frames until ctx is done or Close is called. Tasks
// and frame callbacks are not recovered: a panic stops the loop.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.log.Debug("Frame loop started", zap.Duration("interval", l.interval))
	defer l.log.Debug("Frame loop stopped", zap.Uint64("frames", l.queue.Frames()))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.tasks:
			fn()
		case <-ticker.C:
			l.queue.Flush()
		}
	}
}

// Close stops Run and rejects further submissions.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}
