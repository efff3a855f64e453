package watch

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/chrisuehlinger/scrollwatch/frame"
	"github.com/chrisuehlinger/scrollwatch/geom"
	"github.com/chrisuehlinger/scrollwatch/scroll"
)

type testWindow struct {
	rect      geom.Rect
	top       float64
	listeners map[int]func()
	nextID    int
}

func (w *testWindow) GetBoundingClientRect() geom.Rect { return w.rect }
func (w *testWindow) ScrollTop() float64               { return w.top }

func (w *testWindow) AddScrollListener(fn func()) func() {
	w.nextID++
	id := w.nextID
	w.listeners[id] = fn
	return func() { delete(w.listeners, id) }
}

type testTarget struct {
	rect geom.Rect
}

func (t *testTarget) GetBoundingClientRect() geom.Rect { return t.rect }

type testHost struct {
	window *testWindow
	frames *frame.Queue
}

func (h *testHost) Window() scroll.Container                      { return h.window }
func (h *testHost) Canonical(c scroll.Container) scroll.Container { return c }
func (h *testHost) AddResizeListener(func()) func()               { return func() {} }
func (h *testHost) RequestAnimationFrame(fn func())               { h.frames.RequestFrame(fn) }

type fixture struct {
	host *testHost
	reg  *scroll.Registry
}

func newFixture(t *testing.T) *fixture {
	host := &testHost{
		window: &testWindow{rect: geom.Sized(1000, 800), listeners: make(map[int]func())},
		frames: frame.NewQueue(),
	}
	return &fixture{host: host, reg: scroll.NewRegistry(host, scroll.WithLogger(zaptest.NewLogger(t)))}
}

// scrollTarget places target at top, fires one scroll event and flushes
// the resulting frame.
func (f *fixture) scrollTarget(target *testTarget, top float64) {
	target.rect = target.rect.WithY(top)
	f.host.window.top++
	for _, fn := range f.host.window.listeners {
		fn()
	}
	f.host.frames.Flush()
}

func newTarget(top, height float64) *testTarget {
	return &testTarget{rect: geom.NewRect(0, top, 200, height)}
}
