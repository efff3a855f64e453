// Package viewport defines watch windows: regions bounded by two placements,
// evaluated against a root and a target to decide whether the target is
// inside.
//
// Both placements are read bottom-to-top. A window's Start is where the target
// enters (its top edge crossing Start, measured up from the root's bottom
// edge); the target leaves once its bottom edge has passed End.
package viewport

import (
	"fmt"
	"math"

	"github.com/chrisuehlinger/scrollwatch/geom"
	"github.com/chrisuehlinger/scrollwatch/placement"
)

// Viewport is an immutable watch window.
type Viewport struct {
	start    placement.Resolved
	end      placement.Resolved
	boundary BoundaryMode
	context  any
}

// Calculated is a Viewport evaluated against one concrete pair of rects.
type Calculated struct {
	Start    float64
	End      float64
	Boundary BoundaryMode
	Context  any
}

// Option configures a Viewport under construction.
type Option func(*Viewport)

// WithBoundary sets the boundary mode. The default is Both.
func WithBoundary(b BoundaryMode) Option {
	return func(v *Viewport) {
		v.boundary = b
	}
}

// WithContext attaches a caller-defined value that is returned unchanged in
// every Calculated of the viewport.
func WithContext(ctx any) Option {
	return func(v *Viewport) {
		v.context = ctx
	}
}

// New builds a viewport from two placements written bottom-to-top.
func New(start, end placement.Placement, opts ...Option) (*Viewport, error) {
	s, err := placement.Resolve(start, placement.BottomToTop)
	if err != nil {
		return nil, fmt.Errorf("viewport start: %w", err)
	}
	e, err := placement.Resolve(end, placement.BottomToTop)
	if err != nil {
		return nil, fmt.Errorf("viewport end: %w", err)
	}
	return FromResolved(s, e, opts...), nil
}

// MustNew is like New but panics on error.
func MustNew(start, end placement.Placement, opts ...Option) *Viewport {
	v, err := New(start, end, opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// FromResolved builds a viewport from placements already in the canonical
// frame.
func FromResolved(start, end placement.Resolved, opts ...Option) *Viewport {
	v := &Viewport{start: start, end: end, boundary: Both}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Start returns the start placement, resolved to the bottom-to-top frame.
func (v *Viewport) Start() placement.Resolved {
	return v.start
}

// End returns the end placement, resolved to the bottom-to-top frame.
func (v *Viewport) End() placement.Resolved {
	return v.end
}

// Boundary returns which ends of the window count as in range.
func (v *Viewport) Boundary() BoundaryMode {
	return v.boundary
}

// Context returns the value passed through to every event of v.
func (v *Viewport) Context() any {
	return v.context
}

// Calculate evaluates both placements against rects.
func (v *Viewport) Calculate(rects placement.Rects) Calculated {
	return Calculated{
		Start:    v.start.Calc(rects),
		End:      v.end.Calc(rects),
		Boundary: v.boundary,
		Context:  v.context,
	}
}

// Before derives the window of the given length that ends where v starts.
// Without an explicit boundary the shared edge is left to whichever of the
// two windows does not already include it.
func (v *Viewport) Before(movement placement.Placement, boundary ...BoundaryMode) (*Viewport, error) {
	m, err := placement.Resolve(movement, placement.BottomToTop)
	if err != nil {
		return nil, fmt.Errorf("viewport before: %w", err)
	}
	b := Both
	if v.boundary.Includes(Start) {
		b = Start
	}
	if len(boundary) > 0 {
		b = boundary[0]
	}
	return &Viewport{
		start:    v.start.Move(m.Neg()),
		end:      v.start,
		boundary: b,
		context:  v.context,
	}, nil
}

// After derives the window of the given length that starts where v ends.
func (v *Viewport) After(movement placement.Placement, boundary ...BoundaryMode) (*Viewport, error) {
	m, err := placement.Resolve(movement, placement.BottomToTop)
	if err != nil {
		return nil, fmt.Errorf("viewport after: %w", err)
	}
	b := Both
	if v.boundary.Includes(End) {
		b = End
	}
	if len(boundary) > 0 {
		b = boundary[0]
	}
	return &Viewport{
		start:    v.end,
		end:      v.end.Move(m),
		boundary: b,
		context:  v.context,
	}, nil
}

// Merge computes the union span of several viewports evaluated against the
// same rects. At equal coordinates an inclusive edge wins over an exclusive
// one, so the result does not depend on argument order. Merging nothing
// yields an empty window that contains no target.
func Merge(rects placement.Rects, viewports ...*Viewport) Calculated {
	start, startIncluded := math.Inf(1), false
	end, endIncluded := math.Inf(-1), false
	for _, v := range viewports {
		c := v.Calculate(rects)
		switch {
		case c.Start < start:
			start, startIncluded = c.Start, c.Boundary.Includes(Start)
		case c.Start == start:
			startIncluded = startIncluded || c.Boundary.Includes(Start)
		}
		switch {
		case c.End > end:
			end, endIncluded = c.End, c.Boundary.Includes(End)
		case c.End == end:
			endIncluded = endIncluded || c.Boundary.Includes(End)
		}
	}
	return Calculated{Start: start, End: end, Boundary: boundaryOf(startIncluded, endIncluded)}
}

// Measure returns how far the target has travelled into the window (dist)
// and the travel needed to cross it completely (total).
func Measure(rootRect, targetRect geom.Rect, c Calculated) (dist, total float64) {
	dist = rootRect.Height - targetRect.Top() - c.Start
	total = c.End - c.Start + targetRect.Height
	return dist, total
}

// InRange applies the boundary rules to a measurement.
func InRange(dist, total float64, boundary BoundaryMode) bool {
	afterStart := dist > 0 || (dist == 0 && boundary.Includes(Start))
	beforeEnd := dist < total || (dist == total && boundary.Includes(End))
	return afterStart && beforeEnd
}

// Contains reports whether the target is inside the calculated window.
func (c Calculated) Contains(rootRect, targetRect geom.Rect) bool {
	dist, total := Measure(rootRect, targetRect, c)
	return InRange(dist, total, c.Boundary)
}
