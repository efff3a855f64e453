package scroll

import (
	"sort"

	"go.uber.org/zap"

	"github.com/chrisuehlinger/scrollwatch/geom"
	"github.com/chrisuehlinger/scrollwatch/placement"
	"github.com/chrisuehlinger/scrollwatch/viewport"
)

// Event is delivered to a viewport handler.
type Event struct {
	viewport.Calculated

	Root       *Root
	RootRect   geom.Rect
	Target     Target
	TargetRect geom.Rect

	// Dist is how far the target has travelled into the window and Total the
	// travel needed to cross it.
	Dist, Total float64
	InRange     bool
	Direction   float64
}

// Handler is called on the frame after a tick in which the target is inside
// the viewport it was attached with.
type Handler func(Event)

// AttachOption configures one attachment.
type AttachOption func(*attachment)

// EveryTick makes the handler run on every tick, whether or not the target
// is inside the viewport. Event.InRange tells the two apart.
func EveryTick() AttachOption {
	return func(a *attachment) {
		a.everyTick = true
	}
}

type attachment struct {
	viewport  *viewport.Viewport
	handler   Handler
	everyTick bool
}

type measured struct {
	attachment
	calc viewport.Calculated
}

// Element binds one target to one root and to any number of viewports.
type Element struct {
	root        *Root
	target      Target
	attachments []attachment
	lastSeq     uint64
	destroyed   bool
}

func newElement(root *Root, target Target) *Element {
	return &Element{root: root, target: target}
}

// Root returns the root the element watches.
func (e *Element) Root() *Root {
	return e.root
}

// Target returns the observed target.
func (e *Element) Target() Target {
	return e.target
}

// Len returns the number of attached viewports.
func (e *Element) Len() int {
	return len(e.attachments)
}

// Destroyed reports whether Destroy has been called.
func (e *Element) Destroyed() bool {
	return e.destroyed
}

// Rect measures the target.
func (e *Element) Rect() geom.Rect {
	return e.target.GetBoundingClientRect()
}

// AddViewport attaches v with handler h. Attaching is cumulative, and the
// same viewport may be attached more than once.
func (e *Element) AddViewport(v *viewport.Viewport, h Handler) *Element {
	return e.Attach(v, h)
}

// Attach is AddViewport with options.
func (e *Element) Attach(v *viewport.Viewport, h Handler, opts ...AttachOption) *Element {
	if e.destroyed || v == nil || h == nil {
		return e
	}
	a := attachment{viewport: v, handler: h}
	for _, opt := range opts {
		opt(&a)
	}
	e.attachments = append(e.attachments, a)
	return e
}

// RemoveViewport detaches every attachment of v and reports how many
// attachments remain.
func (e *Element) RemoveViewport(v *viewport.Viewport) int {
	kept := make([]attachment, 0, len(e.attachments))
	for _, a := range e.attachments {
		if a.viewport != v {
			kept = append(kept, a)
		}
	}
	e.attachments = kept
	return len(kept)
}

// OnScroll evaluates every attached viewport for one tick. The target is
// measured once, synchronously; handlers run on the next frame, sorted so
// that windows fire in the order the user sees them cross the screen.
// A tick that was already processed is ignored.
func (e *Element) OnScroll(t Tick) {
	if e.destroyed || t.Seq == e.lastSeq {
		return
	}
	e.lastSeq = t.Seq
	e.evaluate(t, e.attachments)
}

func (e *Element) evaluate(t Tick, attachments []attachment) {
	if len(attachments) == 0 {
		return
	}

	targetRect := e.target.GetBoundingClientRect()
	rects := placement.Rects{Root: t.RootRect, Target: targetRect}

	sorted := make([]measured, len(attachments))
	for i, a := range attachments {
		sorted[i] = measured{attachment: a, calc: a.viewport.Calculate(rects)}
	}
	if t.Direction > 0 {
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].calc.Start < sorted[j].calc.Start
		})
	} else {
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].calc.End > sorted[j].calc.End
		})
	}

	e.root.registry.frames.RequestFrame(func() {
		e.dispatch(t, targetRect, sorted)
	})
}

func (e *Element) dispatch(t Tick, targetRect geom.Rect, sorted []measured) {
	for _, m := range sorted {
		if e.destroyed {
			return
		}
		dist, total := viewport.Measure(t.RootRect, targetRect, m.calc)
		in := viewport.InRange(dist, total, m.calc.Boundary)
		if !in && !m.everyTick {
			continue
		}
		m.handler(Event{
			Calculated: m.calc,
			Root:       t.Root,
			RootRect:   t.RootRect,
			Target:     e.target,
			TargetRect: targetRect,
			Dist:       dist,
			Total:      total,
			InRange:    in,
			Direction:  t.Direction,
		})
	}
}

// Refresh evaluates the element now, outside of any scroll event, using a
// fresh sequence number of its root.
func (e *Element) Refresh() {
	if e.destroyed {
		return
	}
	e.OnScroll(e.root.refreshTick())
}

// RefreshViewport is Refresh limited to the attachments of v. The element's
// other handlers are not called.
func (e *Element) RefreshViewport(v *viewport.Viewport) {
	if e.destroyed {
		return
	}
	var only []attachment
	for _, a := range e.attachments {
		if a.viewport == v {
			only = append(only, a)
		}
	}
	e.evaluate(e.root.refreshTick(), only)
}

// Destroy detaches the element from its root and registry and drops all
// viewports. Frames already scheduled for it do not run its handlers.
// Destroying twice is a no-op.
func (e *Element) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.attachments = nil
	g := e.root.registry
	g.forgetElement(e)
	e.root.Unwatch(e)
	g.log.Debug("Scroll element destroyed", zap.Stringer("root", e.root))
}
