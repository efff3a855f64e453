// Package ui runs the scroll engine inside a Fyne window. Fyne scroll
// containers act as scroll roots and their children as targets.
package ui

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"github.com/chrisuehlinger/scrollwatch/frame"
	"github.com/chrisuehlinger/scrollwatch/geom"
	"github.com/chrisuehlinger/scrollwatch/scroll"
)

var (
	_ scroll.Host             = (*Host)(nil)
	_ scroll.Container        = (*ScrollRoot)(nil)
	_ scroll.ResizeObservable = (*ScrollRoot)(nil)
	_ scroll.Target           = (*Target)(nil)
)

// Host adapts a page-level container.Scroll to the scroll engine. All
// methods must be called on the Fyne main goroutine, which is where Fyne
// delivers scroll events and animation ticks.
type Host struct {
	page    *ScrollRoot
	frames  *frame.Queue
	resize  listeners
	ticker  *fyne.Animation
	running bool
}

// NewHost creates a host whose window root is page.
func NewHost(page *container.Scroll) *Host {
	h := &Host{frames: frame.NewQueue()}
	h.page = newScrollRoot(h, page, nil)
	return h
}

func (h *Host) Window() scroll.Container {
	return h.page
}

// Canonical returns c; a Fyne window has no root aliases.
func (h *Host) Canonical(c scroll.Container) scroll.Container {
	return c
}

func (h *Host) AddResizeListener(fn func()) func() {
	return h.resize.add(fn)
}

func (h *Host) RequestAnimationFrame(fn func()) {
	h.frames.RequestFrame(fn)
}

// Page returns the window root.
func (h *Host) Page() *ScrollRoot {
	return h.page
}

// Nested wraps a scroll container placed inside the content of parent.
func (h *Host) Nested(s *container.Scroll, parent *ScrollRoot) *ScrollRoot {
	return newScrollRoot(h, s, parent)
}

// Target wraps obj, a direct child of the content of root.
func (h *Host) Target(obj fyne.CanvasObject, root *ScrollRoot) *Target {
	return &Target{obj: obj, root: root}
}

// Resize resizes the page and notifies resize listeners.
func (h *Host) Resize(size fyne.Size) {
	if size == h.page.scroll.Size() {
		return
	}
	h.page.scroll.Resize(size)
	h.resize.notify()
}

// Flush runs the pending animation frames.
func (h *Host) Flush() int {
	return h.frames.Flush()
}

// Start flushes frames on every Fyne animation tick until Stop.
func (h *Host) Start() {
	if h.running {
		return
	}
	h.running = true
	h.ticker = fyne.NewAnimation(time.Second, func(float32) { h.frames.Flush() })
	h.ticker.RepeatCount = fyne.AnimationRepeatForever
	h.ticker.Curve = fyne.AnimationLinear
	h.ticker.Start()
}

// Stop ends the frame ticker.
func (h *Host) Stop() {
	if !h.running {
		return
	}
	h.running = false
	h.ticker.Stop()
}

// ScrollRoot is a container.Scroll seen by the engine.
type ScrollRoot struct {
	host     *Host
	scroll   *container.Scroll
	parent   *ScrollRoot
	scrolled listeners
	resize   listeners
	lastY    float32
}

func newScrollRoot(h *Host, s *container.Scroll, parent *ScrollRoot) *ScrollRoot {
	r := &ScrollRoot{host: h, scroll: s, parent: parent, lastY: s.Offset.Y}
	user := s.OnScrolled
	s.OnScrolled = func(p fyne.Position) {
		if user != nil {
			user(p)
		}
		r.changed()
	}
	return r
}

// Scroll returns the wrapped container.
func (r *ScrollRoot) Scroll() *container.Scroll {
	return r.scroll
}

// GetBoundingClientRect returns the page size for the window root and the
// position inside the parent otherwise.
func (r *ScrollRoot) GetBoundingClientRect() geom.Rect {
	if r.parent == nil {
		size := r.scroll.Size()
		return geom.Sized(float64(size.Width), float64(size.Height))
	}
	return r.parent.childRect(r.scroll)
}

func (r *ScrollRoot) ScrollTop() float64 {
	return float64(r.scroll.Offset.Y)
}

func (r *ScrollRoot) AddScrollListener(fn func()) func() {
	return r.scrolled.add(fn)
}

func (r *ScrollRoot) ObserveResize(fn func()) func() {
	return r.resize.add(fn)
}

// ScrollTo moves the offset to y, clamped to the content, and fires scroll
// listeners when it changed.
func (r *ScrollRoot) ScrollTo(y float64) {
	limit := r.scroll.Content.Size().Height - r.scroll.Size().Height
	off := float32(y)
	if off > limit {
		off = limit
	}
	if off < 0 {
		off = 0
	}
	r.scroll.Offset = fyne.NewPos(r.scroll.Offset.X, off)
	r.scroll.Refresh()
	r.changed()
}

// Resize resizes a nested root and notifies its resize observers.
func (r *ScrollRoot) Resize(size fyne.Size) {
	r.scroll.Resize(size)
	r.resize.notify()
}

// changed fires scroll listeners once per offset change. A refresh after a
// programmatic scroll can report the same offset through OnScrolled again.
func (r *ScrollRoot) changed() {
	y := r.scroll.Offset.Y
	if y == r.lastY {
		return
	}
	r.lastY = y
	r.scrolled.notify()
}

func (r *ScrollRoot) childRect(obj fyne.CanvasObject) geom.Rect {
	base := r.GetBoundingClientRect()
	pos, size := obj.Position(), obj.Size()
	return geom.NewRect(
		base.X+float64(pos.X-r.scroll.Offset.X),
		base.Y+float64(pos.Y-r.scroll.Offset.Y),
		float64(size.Width),
		float64(size.Height),
	)
}

// Target is a canvas object observed inside a scroll root.
type Target struct {
	obj  fyne.CanvasObject
	root *ScrollRoot
}

// Object returns the wrapped canvas object.
func (t *Target) Object() fyne.CanvasObject {
	return t.obj
}

func (t *Target) GetBoundingClientRect() geom.Rect {
	return t.root.childRect(t.obj)
}

type listeners struct {
	fns    map[int]func()
	nextID int
}

func (l *listeners) add(fn func()) func() {
	if l.fns == nil {
		l.fns = make(map[int]func())
	}
	l.nextID++
	id := l.nextID
	l.fns[id] = fn
	return func() { delete(l.fns, id) }
}

// notify calls listeners in registration order.
func (l *listeners) notify() {
	for id := 1; id <= l.nextID; id++ {
		if fn, ok := l.fns[id]; ok {
			fn()
		}
	}
}

func (l *listeners) len() int {
	return len(l.fns)
}
