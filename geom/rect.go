// Package geom provides the rectangle snapshot shared by every layer of the
// scroll engine.
package geom

import "fmt"

// Rect is a rectangle measured relative to the visible area of a scroll root,
// in the shape of a DOMRect returned by getBoundingClientRect.
//
// A Rect is a snapshot: it is never updated in place. Code that needs fresh
// geometry asks the host again.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewRect creates a Rect with the given origin and size.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Sized creates a Rect at the origin with the given size, which is how a
// window root reports itself.
func Sized(width, height float64) Rect {
	return Rect{Width: width, Height: height}
}

// Top returns the top edge (y for positive height, y + height for negative).
func (r Rect) Top() float64 {
	if r.Height < 0 {
		return r.Y + r.Height
	}
	return r.Y
}

// Right returns the right edge (x + width for positive width, x for negative).
func (r Rect) Right() float64 {
	if r.Width < 0 {
		return r.X
	}
	return r.X + r.Width
}

// Bottom returns the bottom edge (y + height for positive height, y for negative).
func (r Rect) Bottom() float64 {
	if r.Height < 0 {
		return r.Y
	}
	return r.Y + r.Height
}

// Left returns the left edge (x for positive width, x + width for negative).
func (r Rect) Left() float64 {
	if r.Width < 0 {
		return r.X + r.Width
	}
	return r.X
}

// Translate returns a copy of r moved by dx, dy.
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// WithY returns a copy of r whose top edge sits at y.
func (r Rect) WithY(y float64) Rect {
	r.Y = y
	return r
}

// IsZero reports whether r is the degenerate rect a detached element reports.
func (r Rect) IsZero() bool {
	return r == Rect{}
}

func (r Rect) String() string {
	return fmt.Sprintf("{x:%g y:%g w:%g h:%g}", r.X, r.Y, r.Width, r.Height)
}
