package watch

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/chrisuehlinger/scrollwatch/geom"
	"github.com/chrisuehlinger/scrollwatch/placement"
	"github.com/chrisuehlinger/scrollwatch/scroll"
	"github.com/chrisuehlinger/scrollwatch/viewport"
)

// State is where a tracked target is relative to its window.
type State int

const (
	// Before means the target has not reached the window yet.
	Before State = iota
	// InView means the target intersects the window.
	InView
	// After means the target has left the window.
	After
)

func (s State) String() string {
	switch s {
	case Before:
		return "before"
	case InView:
		return "inView"
	case After:
		return "after"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Signal is returned by handlers. Done revokes the handler that returned it.
type Signal int

const (
	Continue Signal = iota
	Done
)

// Progress describes one tick of a tracked target.
type Progress struct {
	Target     scroll.Target
	State      State
	Distance   float64
	Total      float64
	TargetRect geom.Rect
	RootRect   geom.Rect
	// Window is the in-view window evaluated for this tick.
	Window viewport.Calculated
	// Active is the zone outside of which per-tick handlers are skipped. It
	// equals Window when no margins are configured.
	Active viewport.Calculated
}

// Ratio returns how far the target has crossed the window, clamped to [0, 1].
func (p Progress) Ratio() float64 {
	if p.Total <= 0 {
		if p.Distance >= 0 {
			return 1
		}
		return 0
	}
	r := p.Distance / p.Total
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// StateChange is passed to Handlers.OnStateChange.
type StateChange struct {
	Target scroll.Target
	State  State
	Old    State
}

// ProgressHandler handles a per-tick callback.
type ProgressHandler func(Progress) Signal

// Handlers are the callbacks of a Tracker. Any of them may be nil.
type Handlers struct {
	OnStateChange func(StateChange) Signal
	Before        ProgressHandler
	InView        ProgressHandler
	After         ProgressHandler
	Always        ProgressHandler
}

// TrackOptions configure Track. Start and End are read top-to-bottom and
// default to "bottom" and "top": the target is in view from the moment its
// top edge rises above the bottom of the root until its bottom edge passes
// the top. Before and After are optional margins around that window; when
// either is set, per-tick handlers only run while the target is within the
// margins. ForceInViewBoundary delivers one last InView tick, clamped to the
// window edge, whenever the target leaves the window.
type TrackOptions struct {
	Root                scroll.Container
	Start               placement.Placement
	End                 placement.Placement
	Boundary            string
	Before              placement.Placement
	After               placement.Placement
	ForceInViewBoundary bool
	Handlers            Handlers
}

// Tracker classifies a target as before, in view or after a window on every
// tick of its root.
type Tracker struct {
	el       *scroll.Element
	inView   *viewport.Viewport
	zone     []*viewport.Viewport
	force    bool
	handlers Handlers
	state    State
	log      *zap.Logger
	stopped  bool
}

// Track starts tracking target. The first evaluation runs on the next frame.
func Track(reg *scroll.Registry, target scroll.Target, opts TrackOptions) (*Tracker, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	inView, err := buildViewport(opts.Start, opts.End, opts.Boundary, placement.TopToBottom)
	if err != nil {
		return nil, err
	}

	t := &Tracker{
		inView:   inView,
		force:    opts.ForceInViewBoundary,
		handlers: opts.Handlers,
		state:    Before,
		log:      reg.Logger(),
	}
	if opts.Before != nil || opts.After != nil {
		t.zone = []*viewport.Viewport{inView}
		if opts.Before != nil {
			v, err := inView.Before(opts.Before)
			if err != nil {
				return nil, err
			}
			t.zone = append(t.zone, v)
		}
		if opts.After != nil {
			v, err := inView.After(opts.After)
			if err != nil {
				return nil, err
			}
			t.zone = append(t.zone, v)
		}
	}

	t.el = reg.Element(target, opts.Root)
	t.el.Attach(inView, t.onTick, scroll.EveryTick())
	t.el.RefreshViewport(inView)
	return t, nil
}

// State returns the last computed state.
func (t *Tracker) State() State {
	return t.state
}

// Element returns the scroll element the tracker is attached to.
func (t *Tracker) Element() *scroll.Element {
	return t.el
}

// Stop detaches the tracker. The element is destroyed when nothing else is
// attached to it.
func (t *Tracker) Stop() {
	if t.stopped {
		return
	}
	t.stopped = true
	if t.el.RemoveViewport(t.inView) == 0 {
		t.el.Destroy()
	}
}

// Classify returns the state for a measurement of a window with boundary b.
func Classify(dist, total float64, b viewport.BoundaryMode) State {
	switch {
	case math.IsNaN(dist) || math.IsNaN(total):
		// viewport.InRange never reports NaN in range
		return Before
	case dist < 0 || (dist == 0 && !b.Includes(viewport.Start)):
		return Before
	case dist > total || (dist == total && !b.Includes(viewport.End)):
		return After
	default:
		return InView
	}
}

func (t *Tracker) onTick(e scroll.Event) {
	if t.stopped {
		return
	}
	p := Progress{
		Target:     e.Target,
		State:      Classify(e.Dist, e.Total, e.Boundary),
		Distance:   e.Dist,
		Total:      e.Total,
		TargetRect: e.TargetRect,
		RootRect:   e.RootRect,
		Window:     e.Calculated,
		Active:     e.Calculated,
	}
	active := true
	if len(t.zone) > 0 {
		rects := placement.Rects{Root: e.RootRect, Target: e.TargetRect}
		p.Active = viewport.Merge(rects, t.zone...)
		active = p.Active.Contains(e.RootRect, e.TargetRect)
	}

	if p.State != t.state {
		if t.force && p.State != InView {
			edge := t.clamp(p)
			if p.State == After {
				t.handle(&t.handlers.InView, edge)
			}
			t.transition(p)
			if p.State == Before {
				t.handle(&t.handlers.InView, edge)
			}
		} else {
			t.transition(p)
		}
	}
	if !active {
		return
	}

	switch p.State {
	case Before:
		t.handle(&t.handlers.Before, p)
	case InView:
		t.handle(&t.handlers.InView, p)
	case After:
		t.handle(&t.handlers.After, p)
	}
	t.handle(&t.handlers.Always, p)
}

// clamp moves the target onto the window edge it just crossed.
func (t *Tracker) clamp(p Progress) Progress {
	edge := p
	edge.State = InView
	if p.State == Before {
		edge.TargetRect = p.TargetRect.WithY(p.RootRect.Height - p.Window.Start)
		edge.Distance = 0
	} else {
		edge.TargetRect = p.TargetRect.WithY(p.RootRect.Height - p.Window.End - p.TargetRect.Height)
		edge.Distance = p.Total
	}
	return edge
}

func (t *Tracker) transition(p Progress) {
	old := t.state
	t.state = p.State
	t.log.Debug("Tracked target changed state",
		zap.Stringer("from", old),
		zap.Stringer("to", p.State),
		zap.Float64("distance", p.Distance),
		zap.Float64("total", p.Total))
	if fn := t.handlers.OnStateChange; fn != nil {
		if fn(StateChange{Target: p.Target, State: p.State, Old: old}) == Done {
			t.handlers.OnStateChange = nil
		}
	}
}

func (t *Tracker) handle(slot *ProgressHandler, p Progress) {
	if *slot == nil {
		return
	}
	if (*slot)(p) == Done {
		*slot = nil
	}
}
