// Package watch is the public face of the engine: it wires targets and
// viewports into a scroll.Registry and hands back ways to undo it.
package watch

import (
	"errors"
	"fmt"

	"github.com/chrisuehlinger/scrollwatch/placement"
	"github.com/chrisuehlinger/scrollwatch/scroll"
	"github.com/chrisuehlinger/scrollwatch/viewport"
)

// ErrNilTarget is returned when a registration names no target.
var ErrNilTarget = errors.New("watch: nil target")

// ErrNilHandler is returned by Register when no handler is given.
var ErrNilHandler = errors.New("watch: nil handler")

// Dispose removes a registration. Calling it more than once is harmless.
type Dispose func()

// RegisterOptions describe one viewport registration. Start and End are read
// bottom-to-top and default to "bottom" and "top", the visible area of the
// root. Boundary is parsed with viewport.ParseBoundary ("" means both).
type RegisterOptions struct {
	Root     scroll.Container
	Start    placement.Placement
	End      placement.Placement
	Boundary string
	Context  any
	Handler  scroll.Handler
}

// Register attaches a viewport built from opts to target and returns its
// disposer. Disposing removes only this viewport; the element itself is
// destroyed once it has none left.
func Register(reg *scroll.Registry, target scroll.Target, opts RegisterOptions) (Dispose, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	if opts.Handler == nil {
		return nil, ErrNilHandler
	}
	v, err := buildViewport(opts.Start, opts.End, opts.Boundary, placement.BottomToTop, viewport.WithContext(opts.Context))
	if err != nil {
		return nil, err
	}

	el := reg.Element(target, opts.Root)
	el.AddViewport(v, opts.Handler)

	disposed := false
	return func() {
		if disposed {
			return
		}
		disposed = true
		if el.RemoveViewport(v) == 0 {
			el.Destroy()
		}
	}, nil
}

func buildViewport(start, end placement.Placement, boundary string, dir placement.Direction, opts ...viewport.Option) (*viewport.Viewport, error) {
	if start == nil {
		start = placement.Bottom
	}
	if end == nil {
		end = placement.Top
	}
	b, err := viewport.ParseBoundary(boundary)
	if err != nil {
		return nil, err
	}
	s, err := placement.Resolve(start, dir)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	e, err := placement.Resolve(end, dir)
	if err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}
	return viewport.FromResolved(s, e, append(opts, viewport.WithBoundary(b))...), nil
}
