package dom

import (
	"github.com/chrisuehlinger/scrollwatch/scroll"
)

var (
	_ scroll.Host             = (*Host)(nil)
	_ scroll.Container        = (*Window)(nil)
	_ scroll.Container        = (*Document)(nil)
	_ scroll.ResizeObservable = (*Element)(nil)
)

// Host exposes a window to the scroll engine.
type Host struct {
	window *Window
}

// Host returns the scroll host of w.
func (w *Window) Host() *Host {
	return &Host{window: w}
}

func (h *Host) Window() scroll.Container {
	return h.window
}

// Canonical maps the document, <html> and <body> onto the window, which is
// what actually scrolls.
func (h *Host) Canonical(c scroll.Container) scroll.Container {
	switch v := c.(type) {
	case *Document:
		if v == h.window.doc {
			return h.window
		}
	case *Element:
		if v == h.window.doc.documentElement || v == h.window.doc.body {
			return h.window
		}
	}
	return c
}

func (h *Host) AddResizeListener(fn func()) func() {
	return h.window.AddResizeListener(fn)
}

func (h *Host) RequestAnimationFrame(fn func()) {
	h.window.RequestAnimationFrame(fn)
}
