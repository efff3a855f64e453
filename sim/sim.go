// Package sim drives a dom window through a scripted scroll session and
// records what the watchers attached to it report, frame by frame.
package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tanema/gween"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/scrollwatch/dom"
	"github.com/chrisuehlinger/scrollwatch/frame"
	"github.com/chrisuehlinger/scrollwatch/scroll"
)

var (
	// ErrUnknownEasing is returned for easing names Easing does not know.
	ErrUnknownEasing = errors.New("sim: unknown easing")
	// ErrNoScroller is returned when a step names a container that does
	// not exist or does not scroll.
	ErrNoScroller = errors.New("sim: no such scroll container")
	// ErrNoFrameQueue is returned when the window's frames cannot be
	// flushed by the simulator.
	ErrNoFrameQueue = errors.New("sim: window frames are not a frame.Queue")
)

// DefaultFrameRate is the number of frames simulated per second.
const DefaultFrameRate = 60

// Step is one instruction of a scroll script. To scrolls to an absolute
// offset, By scrolls relative to the offset at the start of the step, and a
// step with neither only lets Duration pass. A zero Duration jumps.
type Step struct {
	// Container is the id of the scroll container; empty means the window.
	Container string
	To        *float64
	By        *float64
	Duration  time.Duration
	Easing    string
}

// Report summarises a run.
type Report struct {
	Steps  int
	Frames int
	// ScrollTop is the offset of the last scrolled container at the end.
	ScrollTop float64
}

// scroller is what a step moves: the window or a scroll container element.
type scroller interface {
	ScrollTop() float64
	ScrollTo(y float64)
}

// Simulator runs scroll scripts against one window.
type Simulator struct {
	window     *dom.Window
	registry   *scroll.Registry
	queue      *frame.Queue
	frameRate  int
	log        *zap.Logger
	recorder   *Recorder
	frames     int
	afterFrame func()
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithFrameRate sets the simulated frames per second.
func WithFrameRate(fps int) Option {
	return func(s *Simulator) {
		if fps > 0 {
			s.frameRate = fps
		}
	}
}

// WithFrameHook sets a function called after every frame, typically to let
// a script runtime process the events the frame produced.
func WithFrameHook(fn func()) Option {
	return func(s *Simulator) {
		s.afterFrame = fn
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Simulator) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a simulator for w. The window's frames must be a frame.Queue,
// which is the dom default, so that the simulator decides when frames run.
func New(w *dom.Window, reg *scroll.Registry, opts ...Option) (*Simulator, error) {
	queue, ok := w.Frames().(*frame.Queue)
	if !ok {
		return nil, ErrNoFrameQueue
	}
	s := &Simulator{
		window:    w,
		registry:  reg,
		queue:     queue,
		frameRate: DefaultFrameRate,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.recorder = newRecorder(s)
	return s, nil
}

// Recorder returns the recorder observers report to.
func (s *Simulator) Recorder() *Recorder {
	return s.recorder
}

// Frame returns the number of frames run so far.
func (s *Simulator) Frame() int {
	return s.frames
}

// Run executes steps in order. It stops early when ctx is cancelled.
func (s *Simulator) Run(ctx context.Context, steps []Step) (Report, error) {
	var report Report
	start := s.frames
	for i, step := range steps {
		target, err := s.scroller(step.Container)
		if err != nil {
			return report, fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := s.runStep(ctx, target, step); err != nil {
			return report, fmt.Errorf("step %d: %w", i+1, err)
		}
		report.Steps++
		report.ScrollTop = target.ScrollTop()
		report.Frames = s.frames - start
		s.log.Debug("Scroll step done",
			zap.Int("step", i+1),
			zap.String("container", containerName(step.Container)),
			zap.Float64("scrollTop", report.ScrollTop),
			zap.Int("frame", s.frames))
	}
	return report, nil
}

func (s *Simulator) runStep(ctx context.Context, target scroller, step Step) error {
	from := target.ScrollTop()
	to, moving := from, false
	switch {
	case step.To != nil:
		to, moving = *step.To, true
	case step.By != nil:
		to, moving = from+*step.By, true
	}

	if step.Duration <= 0 {
		if moving {
			target.ScrollTo(to)
		}
		return s.frame(ctx)
	}

	easing, err := Easing(step.Easing)
	if err != nil {
		return err
	}
	dt := float32(1) / float32(s.frameRate)
	tween := gween.New(float32(from), float32(to), float32(step.Duration.Seconds()), easing)
	for {
		val, done := tween.Update(dt)
		if moving {
			target.ScrollTo(float64(val))
		}
		if err := s.frame(ctx); err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// frame runs one animation frame.
func (s *Simulator) frame(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.frames++
	s.queue.Flush()
	if s.afterFrame != nil {
		s.afterFrame()
	}
	return nil
}

func (s *Simulator) scroller(container string) (scroller, error) {
	if container == "" {
		return s.window, nil
	}
	el := s.window.Document().GetElementByID(container)
	if el == nil || !el.Scrollable() {
		return nil, fmt.Errorf("%w %q", ErrNoScroller, container)
	}
	return el, nil
}

func containerName(id string) string {
	if id == "" {
		return "window"
	}
	return "#" + id
}
