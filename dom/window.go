package dom

import (
	"math"

	"github.com/chrisuehlinger/scrollwatch/frame"
	"github.com/chrisuehlinger/scrollwatch/geom"
)

// Window is the top-level viewport of a document.
type Window struct {
	width, height float64
	scrollY       float64
	doc           *Document
	events        *EventTarget
	frames        frame.Scheduler
}

// WindowOption configures a Window.
type WindowOption func(*Window)

// WithFrames sets where requestAnimationFrame callbacks go. The default is
// a private frame.Queue, reachable through Frames.
func WithFrames(s frame.Scheduler) WindowOption {
	return func(w *Window) {
		if s != nil {
			w.frames = s
		}
	}
}

// NewWindow creates a window of the given viewport size with an empty
// document.
func NewWindow(width, height float64, opts ...WindowOption) *Window {
	w := &Window{
		width:  width,
		height: height,
		events: NewEventTarget(),
		frames: frame.NewQueue(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.doc = newDocument(w)
	return w
}

// Document returns the window's document.
func (w *Window) Document() *Document {
	return w.doc
}

// InnerWidth returns the viewport width.
func (w *Window) InnerWidth() float64 {
	return w.width
}

// InnerHeight returns the viewport height.
func (w *Window) InnerHeight() float64 {
	return w.height
}

// ScrollY returns the vertical scroll offset.
func (w *Window) ScrollY() float64 {
	return w.scrollY
}

// ScrollTop is ScrollY.
func (w *Window) ScrollTop() float64 {
	return w.scrollY
}

// MaxScrollY returns the largest reachable scroll offset.
func (w *Window) MaxScrollY() float64 {
	return math.Max(0, w.doc.ScrollHeight()-w.height)
}

// ScrollTo scrolls to y, clamped to the document, and fires "scroll" when
// the offset changed.
func (w *Window) ScrollTo(y float64) {
	y = clamp(y, 0, w.MaxScrollY())
	if y == w.scrollY {
		return
	}
	w.scrollY = y
	w.events.DispatchEvent(Event{Type: "scroll", Target: w})
}

// ScrollBy scrolls by dy.
func (w *Window) ScrollBy(dy float64) {
	w.ScrollTo(w.scrollY + dy)
}

// Resize changes the viewport size and fires "resize". Layout is not
// recomputed here.
func (w *Window) Resize(width, height float64) {
	if width == w.width && height == w.height {
		return
	}
	w.width, w.height = width, height
	w.events.DispatchEvent(Event{Type: "resize", Target: w})
	w.ScrollTo(w.scrollY)
}

// GetBoundingClientRect returns the viewport rectangle.
func (w *Window) GetBoundingClientRect() geom.Rect {
	return geom.Sized(w.width, w.height)
}

// AddEventListener registers fn for eventType.
func (w *Window) AddEventListener(eventType string, fn Listener, opts ...ListenerOptions) func() {
	return w.events.AddEventListener(eventType, fn, opts...)
}

// ListenerCount returns the number of listeners for eventType.
func (w *Window) ListenerCount(eventType string) int {
	return w.events.ListenerCount(eventType)
}

// AddScrollListener registers a passive scroll listener.
func (w *Window) AddScrollListener(fn func()) func() {
	return w.events.AddEventListener("scroll", func(Event) { fn() }, ListenerOptions{Passive: true})
}

// AddResizeListener registers a resize listener.
func (w *Window) AddResizeListener(fn func()) func() {
	return w.events.AddEventListener("resize", func(Event) { fn() })
}

// RequestAnimationFrame runs fn on the next frame.
func (w *Window) RequestAnimationFrame(fn func()) {
	w.frames.RequestFrame(fn)
}

// Frames returns the window's frame scheduler.
func (w *Window) Frames() frame.Scheduler {
	return w.frames
}
