package placement

import (
	"github.com/chrisuehlinger/scrollwatch/geom"
)

// Resolved is a placement reduced to numbers: Percent of the root's height,
// plus Distance pixels, plus TargetPercent of the target's height.
type Resolved struct {
	Percent       float64
	Distance      Distance
	TargetPercent float64
}

// Rects is the pair of rectangles a placement is evaluated against.
type Rects struct {
	Root   geom.Rect
	Target geom.Rect
}

// Resolve interprets p in dir and returns it in the Canonical frame.
func Resolve(p Placement, dir Direction) (Resolved, error) {
	if p == nil {
		return Resolved{}, invalid("<nil>", "missing placement")
	}
	return p.resolve(dir)
}

// ResolveString parses s and resolves it in dir.
func ResolveString(s string, dir Direction) (Resolved, error) {
	p, err := Parse(s)
	if err != nil {
		return Resolved{}, err
	}
	return p.resolve(dir)
}

// MustResolve is like Resolve but panics on error.
func MustResolve(p Placement, dir Direction) Resolved {
	r, err := Resolve(p, dir)
	if err != nil {
		panic(err)
	}
	return r
}

// Flip mirrors r between the two directions. Flipping twice yields r.
func (r Resolved) Flip() Resolved {
	return Resolved{
		Percent:       1 - r.Percent,
		Distance:      r.Distance.Neg(),
		TargetPercent: -r.TargetPercent,
	}
}

// Convert re-expresses r, measured in from, in direction to.
func (r Resolved) Convert(from, to Direction) Resolved {
	if from == to {
		return r
	}
	return r.Flip()
}

// Move shifts r by another resolved placement, component by component. The
// resulting distance is dynamic when either input is.
func (r Resolved) Move(by Resolved) Resolved {
	return Resolved{
		Percent:       r.Percent + by.Percent,
		Distance:      r.Distance.Add(by.Distance),
		TargetPercent: r.TargetPercent + by.TargetPercent,
	}
}

// Neg returns the placement pointing the same amount the other way, which is
// a movement in the opposite direction rather than a direction flip.
func (r Resolved) Neg() Resolved {
	return Resolved{
		Percent:       -r.Percent,
		Distance:      r.Distance.Neg(),
		TargetPercent: -r.TargetPercent,
	}
}

// Calc evaluates r against concrete rects. Dynamic distances are evaluated on
// every call, so callers must not cache the result across ticks.
func (r Resolved) Calc(rects Rects) float64 {
	return rects.Root.Height*r.Percent + r.Distance.Value() + rects.Target.Height*r.TargetPercent
}
