package scroll

import (
	"github.com/chrisuehlinger/scrollwatch/frame"
	"github.com/chrisuehlinger/scrollwatch/geom"
)

type listener struct {
	id int
	fn func()
}

type listeners struct {
	list   []listener
	nextID int
	added  int
}

func (l *listeners) add(fn func()) func() {
	l.nextID++
	id := l.nextID
	l.list = append(l.list, listener{id: id, fn: fn})
	l.added++
	return func() {
		for i, x := range l.list {
			if x.id == id {
				l.list = append(l.list[:i:i], l.list[i+1:]...)
				return
			}
		}
	}
}

func (l *listeners) fire() {
	snapshot := append([]listener(nil), l.list...)
	for _, x := range snapshot {
		x.fn()
	}
}

type fakeContainer struct {
	rect      geom.Rect
	top       float64
	rectCalls int
	scroll    listeners
}

func newFakeContainer(width, height float64) *fakeContainer {
	return &fakeContainer{rect: geom.Sized(width, height)}
}

func (c *fakeContainer) GetBoundingClientRect() geom.Rect {
	c.rectCalls++
	return c.rect
}

func (c *fakeContainer) ScrollTop() float64 {
	return c.top
}

func (c *fakeContainer) AddScrollListener(fn func()) func() {
	return c.scroll.add(fn)
}

func (c *fakeContainer) scrollTo(y float64) {
	c.top = y
	c.scroll.fire()
}

// observedContainer reports its own resizes.
type observedContainer struct {
	fakeContainer
	resize listeners
}

func (c *observedContainer) ObserveResize(fn func()) func() {
	return c.resize.add(fn)
}

func (c *observedContainer) resizeTo(width, height float64) {
	c.rect = geom.NewRect(c.rect.X, c.rect.Y, width, height)
	c.resize.fire()
}

type fakeTarget struct {
	rect  geom.Rect
	calls int
}

func newFakeTarget(top, height float64) *fakeTarget {
	return &fakeTarget{rect: geom.NewRect(0, top, 100, height)}
}

func (t *fakeTarget) GetBoundingClientRect() geom.Rect {
	t.calls++
	return t.rect
}

func (t *fakeTarget) moveTo(top float64) {
	t.rect = t.rect.WithY(top)
}

type fakeHost struct {
	window   *fakeContainer
	document *fakeContainer
	resize   listeners
	frames   *frame.Queue
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		window:   newFakeContainer(1000, 800),
		document: newFakeContainer(1000, 5000),
		frames:   frame.NewQueue(),
	}
}

func (h *fakeHost) Window() Container {
	return h.window
}

func (h *fakeHost) Canonical(c Container) Container {
	if c == Container(h.document) {
		return h.window
	}
	return c
}

func (h *fakeHost) AddResizeListener(fn func()) func() {
	return h.resize.add(fn)
}

func (h *fakeHost) RequestAnimationFrame(fn func()) {
	h.frames.RequestFrame(fn)
}

func (h *fakeHost) resizeWindow(width, height float64) {
	h.window.rect = geom.Sized(width, height)
	h.resize.fire()
}
