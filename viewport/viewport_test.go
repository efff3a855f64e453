package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisuehlinger/scrollwatch/geom"
	"github.com/chrisuehlinger/scrollwatch/placement"
)

func rectsAt(rootHeight, top, height float64) placement.Rects {
	return placement.Rects{
		Root:   geom.Sized(1000, rootHeight),
		Target: geom.NewRect(0, top, 100, height),
	}
}

func TestCalculate(t *testing.T) {
	v := MustNew(placement.Bottom, placement.Top, WithContext("visible"))
	c := v.Calculate(rectsAt(800, 0, 200))
	assert.Equal(t, 0.0, c.Start)
	assert.Equal(t, 800.0, c.End)
	assert.Equal(t, Both, c.Boundary)
	assert.Equal(t, "visible", c.Context)
}

func TestAccessors(t *testing.T) {
	v := MustNew(placement.Bottom, placement.Top, WithBoundary(Start), WithContext(42))
	assert.Equal(t, 0.0, v.Start().Percent)
	assert.Equal(t, 1.0, v.End().Percent)
	assert.Equal(t, Start, v.Boundary())
	assert.Equal(t, 42, v.Context())
}

func TestNewReportsPlacementErrors(t *testing.T) {
	_, err := New(placement.Alias("middle"), placement.Top)
	require.Error(t, err)
	assert.ErrorIs(t, err, placement.ErrInvalidPlacement)
	assert.Contains(t, err.Error(), "viewport start")

	_, err = New(placement.Top, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "viewport end")
}

func TestFarWindowDoesNotTrigger(t *testing.T) {
	rects := rectsAt(1000, 500, 100)
	c := FromResolved(placement.Resolved{}, placement.Resolved{}, WithBoundary(Both)).Calculate(rects)

	dist, total := Measure(rects.Root, rects.Target, c)
	assert.Equal(t, 500.0, dist)
	assert.Equal(t, 100.0, total)
	assert.False(t, InRange(dist, total, c.Boundary))
	assert.False(t, c.Contains(rects.Root, rects.Target))
}

func TestExactBoundaryTieBreak(t *testing.T) {
	// dist == total: the target's bottom sits exactly on the end edge.
	rects := rectsAt(1000, 900, 100)
	c := Calculated{Start: 0, End: 0}
	dist, total := Measure(rects.Root, rects.Target, c)
	require.Equal(t, dist, total)

	assert.True(t, InRange(dist, total, End))
	assert.True(t, InRange(dist, total, Both))
	assert.False(t, InRange(dist, total, Start))
	assert.False(t, InRange(dist, total, Neither))

	// dist == 0: the target's top sits exactly on the start edge.
	rects = rectsAt(1000, 1000, 100)
	dist, total = Measure(rects.Root, rects.Target, c)
	require.Equal(t, 0.0, dist)
	assert.True(t, InRange(dist, total, Start))
	assert.False(t, InRange(dist, total, End))
}

func TestBeforeAndAfter(t *testing.T) {
	v := MustNew(placement.Bottom, placement.Top)
	rects := rectsAt(800, 0, 200)

	before, err := v.Before(placement.Pixels(50))
	require.NoError(t, err)
	c := before.Calculate(rects)
	assert.Equal(t, -50.0, c.Start)
	assert.Equal(t, 0.0, c.End)
	assert.Equal(t, Start, c.Boundary, "shared edge belongs to the original")

	after, err := v.After(placement.Percent(0.5))
	require.NoError(t, err)
	c = after.Calculate(rects)
	assert.Equal(t, 800.0, c.Start)
	assert.Equal(t, 1200.0, c.End)
	assert.Equal(t, End, c.Boundary)

	// v itself is untouched.
	c = v.Calculate(rects)
	assert.Equal(t, 0.0, c.Start)
	assert.Equal(t, 800.0, c.End)
	assert.Equal(t, Both, c.Boundary)
}

func TestDerivedBoundaryDefaults(t *testing.T) {
	tests := []struct {
		own          BoundaryMode
		before, after BoundaryMode
	}{
		{Both, Start, End},
		{Start, Start, Both},
		{End, Both, End},
		{Neither, Both, Both},
	}
	for _, tt := range tests {
		t.Run(tt.own.String(), func(t *testing.T) {
			v := MustNew(placement.Bottom, placement.Top, WithBoundary(tt.own))
			b, err := v.Before(placement.Pixels(10))
			require.NoError(t, err)
			assert.Equal(t, tt.before, b.Boundary())
			a, err := v.After(placement.Pixels(10))
			require.NoError(t, err)
			assert.Equal(t, tt.after, a.Boundary())
		})
	}

	v := MustNew(placement.Bottom, placement.Top)
	b, err := v.Before(placement.Pixels(10), Neither)
	require.NoError(t, err)
	assert.Equal(t, Neither, b.Boundary())
}

func TestAdjacentWindowsDoNotDoubleFire(t *testing.T) {
	v := MustNew(placement.Bottom, placement.Top)
	before, err := v.Before(placement.Pixels(100))
	require.NoError(t, err)

	// The target's top sits exactly on the bottom edge of the root, which is
	// the start of v and the end of before.
	root := geom.Sized(1000, 800)
	target := geom.NewRect(0, 800, 100, 0)
	rects := placement.Rects{Root: root, Target: target}

	inV := v.Calculate(rects).Contains(root, target)
	inBefore := before.Calculate(rects).Contains(root, target)
	assert.True(t, inV)
	assert.False(t, inBefore)
}

func TestMerge(t *testing.T) {
	rects := rectsAt(800, 0, 200)
	a := MustNew(placement.Pixels(100), placement.Pixels(300), WithBoundary(End))
	b := MustNew(placement.Pixels(100), placement.Pixels(500), WithBoundary(Both))
	c := MustNew(placement.Pixels(200), placement.Pixels(500), WithBoundary(Start))

	got := Merge(rects, a, b, c)
	assert.Equal(t, 100.0, got.Start)
	assert.Equal(t, 500.0, got.End)
	assert.Equal(t, Both, got.Boundary)

	// Inclusion at a tie does not depend on order.
	assert.Equal(t, got, Merge(rects, c, b, a))

	got = Merge(rects, a, c)
	assert.Equal(t, 100.0, got.Start)
	assert.Equal(t, 500.0, got.End)
	assert.Equal(t, Neither, got.Boundary)

	// A strictly lower start replaces inclusion.
	d := MustNew(placement.Pixels(50), placement.Pixels(60), WithBoundary(End))
	got = Merge(rects, b, d)
	assert.Equal(t, 50.0, got.Start)
	assert.Equal(t, End, got.Boundary)
}

func TestMergeEmpty(t *testing.T) {
	rects := rectsAt(800, 0, 200)
	got := Merge(rects)
	assert.True(t, math.IsInf(got.Start, 1))
	assert.True(t, math.IsInf(got.End, -1))
	assert.False(t, got.Contains(rects.Root, rects.Target))
}

func TestParseBoundary(t *testing.T) {
	for _, b := range []BoundaryMode{Neither, Start, End, Both} {
		got, err := ParseBoundary(b.String())
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
	_, err := ParseBoundary("middle")
	assert.Error(t, err)
}
