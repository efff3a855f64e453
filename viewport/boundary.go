package viewport

import (
	"fmt"
	"strings"
)

// BoundaryMode states which edges of a window count as inside it when the
// target sits exactly on them.
type BoundaryMode uint8

const (
	Neither BoundaryMode = 0
	Start   BoundaryMode = 1 << 0
	End     BoundaryMode = 1 << 1
	Both                 = Start | End
)

// Includes reports whether every edge in edge is inclusive in b.
func (b BoundaryMode) Includes(edge BoundaryMode) bool {
	return b&edge == edge
}

func (b BoundaryMode) String() string {
	switch b {
	case Neither:
		return "neither"
	case Start:
		return "start"
	case End:
		return "end"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("BoundaryMode(%d)", uint8(b))
	}
}

// ParseBoundary parses the names produced by String.
func ParseBoundary(s string) (BoundaryMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "neither", "none":
		return Neither, nil
	case "start":
		return Start, nil
	case "end":
		return End, nil
	case "both", "":
		return Both, nil
	}
	return Neither, fmt.Errorf("unknown boundary mode %q", s)
}

func boundaryOf(startIncluded, endIncluded bool) BoundaryMode {
	var b BoundaryMode
	if startIncluded {
		b |= Start
	}
	if endIncluded {
		b |= End
	}
	return b
}
