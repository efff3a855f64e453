package placement

import "fmt"

// Direction is the edge a placement is measured from.
type Direction int

const (
	// TopToBottom measures from the top edge of the root downwards.
	TopToBottom Direction = iota
	// BottomToTop measures from the bottom edge of the root upwards. It is the
	// canonical frame: Resolved values are always expressed in it.
	BottomToTop
)

// Canonical is the frame every Resolved placement is stored in. The in-range
// test measures the target's top edge upwards from the root's bottom edge, so
// placements share that frame.
const Canonical = BottomToTop

func (d Direction) String() string {
	switch d {
	case TopToBottom:
		return "t2b"
	case BottomToTop:
		return "b2t"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection parses "t2b" or "b2t".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "t2b", "top-to-bottom":
		return TopToBottom, nil
	case "b2t", "bottom-to-top":
		return BottomToTop, nil
	}
	return 0, fmt.Errorf("unknown placement direction %q", s)
}

// Ptr returns a pointer to d, for Partial.Direction.
func (d Direction) Ptr() *Direction {
	return &d
}
