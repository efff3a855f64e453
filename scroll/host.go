// Package scroll multiplexes native scroll events of a root to the targets
// watching it, and evaluates each target against its viewports.
//
// The engine never touches a real DOM. Hosts (a browser binding, the dom
// package, a fyne container) provide the few services below.
package scroll

import (
	"github.com/chrisuehlinger/scrollwatch/geom"
)

// Target is an observed element.
type Target interface {
	// GetBoundingClientRect returns the element's border box relative to the
	// visible area of the window. Detached elements may return a zero Rect.
	GetBoundingClientRect() geom.Rect
}

// Container is a scrollable root. Implementations are used as map keys and
// must be comparable, which pointer types are.
type Container interface {
	Target
	// ScrollTop returns the current vertical scroll offset.
	ScrollTop() float64
	// AddScrollListener registers a passive, non-capturing scroll listener
	// and returns the function that removes it.
	AddScrollListener(fn func()) (remove func())
}

// ResizeObservable is implemented by containers that can report their own
// size changes. Roots without it fall back to the host resize listener.
type ResizeObservable interface {
	ObserveResize(fn func()) (stop func())
}

// Host is the environment the engine runs in.
type Host interface {
	// Window returns the canonical window root.
	Window() Container
	// Canonical maps root aliases (the document, its root element, the
	// body) to the window. Other containers are returned unchanged.
	Canonical(c Container) Container
	// AddResizeListener registers a window resize listener.
	AddResizeListener(fn func()) (remove func())
	// RequestAnimationFrame runs fn once, on the next frame.
	RequestAnimationFrame(fn func())
}
