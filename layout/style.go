package layout

import (
	"strings"

	"github.com/chrisuehlinger/scrollwatch/dom"
)

var borderKeywords = map[string]float64{
	"thin":   1,
	"medium": 3,
	"thick":  5,
}

// length resolves a longhand edge property such as "margin-top", falling
// back to its shorthand ("margin: 1px 2px"). Unknown values are zero.
func (box *LayoutBox) length(property string) float64 {
	v, _ := dom.ParseLength(box.value(property))
	return v
}

func (box *LayoutBox) borderWidth(property string) float64 {
	v := strings.ToLower(box.value(property))
	if w, ok := borderKeywords[v]; ok {
		return w
	}
	w, _ := dom.ParseLength(v)
	return w
}

func (box *LayoutBox) isAuto(property string) bool {
	return strings.EqualFold(box.value(property), "auto")
}

// explicit returns a non-auto length for property, if one is set.
func (box *LayoutBox) explicit(property string) (float64, bool) {
	if box.Style == nil {
		return 0, false
	}
	return dom.ParseLength(box.Style.Get(property))
}

func (box *LayoutBox) value(property string) string {
	if box.Style == nil {
		return ""
	}
	if v := box.Style.Get(property); v != "" {
		return v
	}
	shorthand, side, ok := splitEdgeProperty(property)
	if !ok {
		return ""
	}
	return edgeValue(box.Style.Get(shorthand), side)
}

// splitEdgeProperty maps "margin-left" to ("margin", 3) and
// "border-top-width" to ("border-width", 0).
func splitEdgeProperty(property string) (string, int, bool) {
	sides := []string{"top", "right", "bottom", "left"}
	for i, side := range sides {
		switch {
		case strings.HasPrefix(property, "border-") && property == "border-"+side+"-width":
			return "border-width", i, true
		case strings.HasSuffix(property, "-"+side) && !strings.HasPrefix(property, "border-"):
			return strings.TrimSuffix(property, "-"+side), i, true
		}
	}
	return "", 0, false
}

// edgeValue picks one side out of a 1 to 4 value shorthand.
func edgeValue(shorthand string, side int) string {
	parts := strings.Fields(shorthand)
	switch len(parts) {
	case 1:
		return parts[0]
	case 2:
		return parts[side%2]
	case 3:
		if side == 3 {
			return parts[1]
		}
		return parts[side]
	case 4:
		return parts[side]
	}
	return ""
}
