package placement

// Distance is a pixel offset that is either fixed or computed on every
// evaluation, e.g. the live height of a toolbar.
//
// The zero value is a fixed distance of 0.
type Distance struct {
	fixed float64
	fn    func() float64
}

// Fixed returns a constant distance.
func Fixed(px float64) Distance {
	return Distance{fixed: px}
}

// DynamicDistance returns a distance that calls fn each time it is evaluated.
func DynamicDistance(fn func() float64) Distance {
	if fn == nil {
		return Distance{}
	}
	return Distance{fn: fn}
}

// IsDynamic reports whether the distance is computed at evaluation time.
func (d Distance) IsDynamic() bool {
	return d.fn != nil
}

// Value evaluates the distance.
func (d Distance) Value() float64 {
	if d.fn != nil {
		return d.fn()
	}
	return d.fixed
}

// Neg returns the negated distance.
func (d Distance) Neg() Distance {
	if fn := d.fn; fn != nil {
		return Distance{fn: func() float64 { return -fn() }}
	}
	return Distance{fixed: -d.fixed}
}

// Add returns d + o. The sum stays fixed only when both operands are fixed.
func (d Distance) Add(o Distance) Distance {
	if d.fn == nil && o.fn == nil {
		return Distance{fixed: d.fixed + o.fixed}
	}
	return Distance{fn: func() float64 { return d.Value() + o.Value() }}
}
