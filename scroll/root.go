package scroll

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chrisuehlinger/scrollwatch/geom"
)

// Tick is what a root hands its watchers for one scroll event.
type Tick struct {
	RootRect  geom.Rect
	Seq       uint64
	Root      *Root
	ScrollTop float64
	// Direction is scrollTop minus the previous scrollTop. Only its sign is
	// meaningful: > 0 while content moves up (normal reading), < 0 when
	// scrolling back.
	Direction float64
}

// Watcher receives the ticks of a root. Watchers are compared by identity.
type Watcher interface {
	OnScroll(Tick)
}

type subscription struct {
	w       Watcher
	removed bool
}

// Root is one scroll container (or the window) and its single native scroll
// listener. It is dormant while nobody watches it; the first Watch attaches
// the listener and the last Unwatch removes it.
type Root struct {
	registry  *Registry
	container Container
	isWindow  bool

	subs          []*subscription
	seq           uint64
	lastScrollTop float64

	rect      geom.Rect
	rectValid bool

	removeScroll func()
	removeResize func()
}

func newRoot(g *Registry, c Container, isWindow bool) *Root {
	return &Root{
		registry:      g,
		container:     c,
		isWindow:      isWindow,
		lastScrollTop: c.ScrollTop(),
	}
}

// Container returns the underlying container.
func (r *Root) Container() Container {
	return r.container
}

// IsWindow reports whether r is the window root.
func (r *Root) IsWindow() bool {
	return r.isWindow
}

// Active reports whether the native listener is attached.
func (r *Root) Active() bool {
	return r.removeScroll != nil
}

// Seq returns the sequence number of the last tick.
func (r *Root) Seq() uint64 {
	return r.seq
}

// Watchers returns the number of current watchers.
func (r *Root) Watchers() int {
	return len(r.subs)
}

// Rect returns the root's rect. While active it is computed once and reused
// until the root is resized; scrolling never changes it.
func (r *Root) Rect() geom.Rect {
	if !r.Active() {
		return r.container.GetBoundingClientRect()
	}
	if !r.rectValid {
		r.rect = r.container.GetBoundingClientRect()
		r.rectValid = true
	}
	return r.rect
}

// ScrollTop returns the container's current scroll offset.
func (r *Root) ScrollTop() float64 {
	return r.container.ScrollTop()
}

// Watch adds w. Watching twice is a no-op.
func (r *Root) Watch(w Watcher) {
	for _, s := range r.subs {
		if s.w == w {
			return
		}
	}
	if len(r.subs) == 0 {
		r.activate()
	}
	subs := make([]*subscription, len(r.subs), len(r.subs)+1)
	copy(subs, r.subs)
	r.subs = append(subs, &subscription{w: w})
}

// Unwatch removes w. When the last watcher leaves the root goes dormant.
func (r *Root) Unwatch(w Watcher) {
	i := -1
	for j, s := range r.subs {
		if s.w == w {
			i = j
			break
		}
	}
	if i < 0 {
		return
	}
	r.subs[i].removed = true

	// Ticks in progress iterate over the old slice.
	subs := make([]*subscription, 0, len(r.subs)-1)
	subs = append(subs, r.subs[:i]...)
	r.subs = append(subs, r.subs[i+1:]...)

	if len(r.subs) == 0 {
		r.deactivate()
	}
}

// OnScroll handles one native scroll event: it advances the sequence and
// calls every watcher, in registration order. Watcher panics propagate.
func (r *Root) OnScroll() {
	r.dispatch(r.nextTick())
}

func (r *Root) nextTick() Tick {
	scrollTop := r.container.ScrollTop()
	direction := scrollTop - r.lastScrollTop
	r.lastScrollTop = scrollTop
	r.seq++
	return Tick{
		RootRect:  r.Rect(),
		Seq:       r.seq,
		Root:      r,
		ScrollTop: scrollTop,
		Direction: direction,
	}
}

// refreshTick builds a tick for an out-of-band evaluation. It takes a fresh
// sequence number but leaves the scroll direction state alone.
func (r *Root) refreshTick() Tick {
	r.seq++
	return Tick{
		RootRect:  r.Rect(),
		Seq:       r.seq,
		Root:      r,
		ScrollTop: r.container.ScrollTop(),
	}
}

func (r *Root) dispatch(t Tick) {
	for _, s := range r.subs {
		if s.removed {
			continue
		}
		s.w.OnScroll(t)
	}
}

func (r *Root) activate() {
	r.lastScrollTop = r.container.ScrollTop()
	r.removeScroll = r.container.AddScrollListener(r.OnScroll)

	invalidate := func() { r.rectValid = false }
	if ro, ok := r.container.(ResizeObservable); ok && !r.isWindow {
		r.removeResize = ro.ObserveResize(invalidate)
	} else {
		r.removeResize = r.registry.host.AddResizeListener(invalidate)
	}
	r.registry.log.Debug("Scroll root activated", zap.Stringer("root", r))
}

func (r *Root) deactivate() {
	if r.removeScroll != nil {
		r.removeScroll()
		r.removeScroll = nil
	}
	if r.removeResize != nil {
		r.removeResize()
		r.removeResize = nil
	}
	r.rectValid = false
	r.rect = geom.Rect{}
	r.registry.log.Debug("Scroll root deactivated", zap.Stringer("root", r))
}

func (r *Root) String() string {
	if r.isWindow {
		return "window"
	}
	return fmt.Sprintf("container(%p)", r.container)
}
