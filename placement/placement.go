// Package placement resolves symbolic positions such as "bottom", "10%" or
// "-50px" into the numeric triple the viewport math works with.
//
// A Placement names a point relative to a scroll root: a fraction of the
// root's height, plus a pixel distance, plus a fraction of the target's own
// height. Placements are written in either direction (see Direction) and are
// normalized once, at resolution time, into the Canonical frame.
package placement

import (
	"math"
	"strconv"
	"strings"
)

// Placement is one of Alias, Percent, Pixels, Dynamic or Partial.
type Placement interface {
	resolve(dir Direction) (Resolved, error)
}

// Alias is a named fraction of the root's height.
type Alias string

const (
	Top      Alias = "top"
	Bottom   Alias = "bottom"
	Center   Alias = "center"
	NextPage Alias = "nextPage"
	PrevPage Alias = "prevPage"
)

// aliasFractions holds the fractions measured from the top edge. The
// bottom-to-top value of an alias is 1 minus its entry.
var aliasFractions = map[Alias]float64{
	Top:      0,
	Center:   0.5,
	Bottom:   1,
	NextPage: 2,
	PrevPage: -1,
}

// Fraction returns the fraction of the root's height the alias denotes when
// measured in dir.
func (a Alias) Fraction(dir Direction) (float64, error) {
	f, ok := aliasFractions[a]
	if !ok {
		return 0, invalid(string(a), "unknown alias")
	}
	if dir == BottomToTop {
		return 1 - f, nil
	}
	return f, nil
}

func (a Alias) resolve(dir Direction) (Resolved, error) {
	f, err := a.Fraction(dir)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{Percent: f}.Convert(dir, Canonical), nil
}

// Percent is a fraction of the root's height; Percent(0.37) is "37%".
type Percent float64

func (p Percent) resolve(dir Direction) (Resolved, error) {
	if math.IsNaN(float64(p)) || math.IsInf(float64(p), 0) {
		return Resolved{}, invalid(strconv.FormatFloat(float64(p), 'g', -1, 64), "percent is not finite")
	}
	return Resolved{Percent: float64(p)}.Convert(dir, Canonical), nil
}

// Pixels is a fixed distance from the reference edge.
type Pixels float64

func (p Pixels) resolve(dir Direction) (Resolved, error) {
	if math.IsNaN(float64(p)) || math.IsInf(float64(p), 0) {
		return Resolved{}, invalid(strconv.FormatFloat(float64(p), 'g', -1, 64), "distance is not finite")
	}
	return Resolved{Distance: Fixed(float64(p))}.Convert(dir, Canonical), nil
}

// Dynamic is a distance from the reference edge evaluated on every tick.
type Dynamic func() float64

func (d Dynamic) resolve(dir Direction) (Resolved, error) {
	if d == nil {
		return Resolved{}, invalid("<nil>", "nil dynamic distance")
	}
	return Resolved{Distance: DynamicDistance(d)}.Convert(dir, Canonical), nil
}

// Fraction is either a named alias or a plain fraction. A non-empty Alias
// takes precedence over Value.
type Fraction struct {
	Alias Alias
	Value float64
}

// Ratio returns a plain Fraction.
func Ratio(v float64) Fraction {
	return Fraction{Value: v}
}

// Named returns a Fraction that refers to an alias.
func Named(a Alias) Fraction {
	return Fraction{Alias: a}
}

func (f Fraction) eval(dir Direction) (float64, error) {
	if f.Alias != "" {
		return f.Alias.Fraction(dir)
	}
	return f.Value, nil
}

// Partial spells out every component of a placement. Unset fields are zero.
// When Direction is set the record is read in that direction, aliases
// included, instead of the caller's.
type Partial struct {
	Percent       Fraction
	Distance      Distance
	TargetPercent Fraction
	Direction     *Direction
}

func (p Partial) resolve(dir Direction) (Resolved, error) {
	if p.Direction != nil {
		dir = *p.Direction
	}
	percent, err := p.Percent.eval(dir)
	if err != nil {
		return Resolved{}, err
	}
	targetPercent, err := p.TargetPercent.eval(dir)
	if err != nil {
		return Resolved{}, err
	}
	r := Resolved{Percent: percent, Distance: p.Distance, TargetPercent: targetPercent}
	return r.Convert(dir, Canonical), nil
}

// Parse reads the string form of a placement: an alias name, a percentage
// ("37%"), a pixel length ("-12px") or a bare number of pixels.
func Parse(s string) (Placement, error) {
	str := strings.TrimSpace(s)
	if str == "" {
		return nil, invalid(s, "empty placement")
	}
	if _, ok := aliasFractions[Alias(str)]; ok {
		return Alias(str), nil
	}

	lower := strings.ToLower(str)
	switch {
	case strings.HasSuffix(lower, "%"):
		v, err := parseNumber(str[:len(str)-1])
		if err != nil {
			return nil, invalid(s, "malformed percentage")
		}
		return Percent(v / 100), nil
	case strings.HasSuffix(lower, "px"):
		v, err := parseNumber(str[:len(str)-2])
		if err != nil {
			return nil, invalid(s, "malformed pixel length")
		}
		return Pixels(v), nil
	}

	v, err := parseNumber(str)
	if err != nil {
		return nil, invalid(s, "not an alias, percentage or length")
	}
	return Pixels(v), nil
}

// MustParse is like Parse but panics on error. It is meant for placements
// spelled out in source code.
func MustParse(s string) Placement {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}
