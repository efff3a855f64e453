package placement

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisuehlinger/scrollwatch/geom"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Placement
	}{
		{"top", Top},
		{"nextPage", NextPage},
		{"37%", Percent(0.37)},
		{" -50% ", Percent(-0.5)},
		{"-12px", Pixels(-12)},
		{"12.5PX", Pixels(12.5)},
		{"40", Pixels(40)},
		{"0", Pixels(0)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "12pt", "%", "px", "Top", "NaN", "1e999%"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPlacement), "error %v should wrap ErrInvalidPlacement", err)

			var perr *Error
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, in, perr.Input)
		})
	}
}

func TestResolveStrings(t *testing.T) {
	tests := []struct {
		in            string
		dir           Direction
		percent       float64
		distance      float64
		targetPercent float64
	}{
		{"50%", TopToBottom, 0.5, 0, 0},
		{"top", BottomToTop, 1, 0, 0},
		{"top", TopToBottom, 1, 0, 0},
		{"bottom", TopToBottom, 0, 0, 0},
		{"bottom", BottomToTop, 0, 0, 0},
		{"center", TopToBottom, 0.5, 0, 0},
		{"nextPage", BottomToTop, -1, 0, 0},
		{"nextPage", TopToBottom, -1, 0, 0},
		{"prevPage", BottomToTop, 2, 0, 0},
		{"10px", TopToBottom, 1, -10, 0},
		{"10px", BottomToTop, 0, 10, 0},
		{"25%", BottomToTop, 0.25, 0, 0},
		{"25%", TopToBottom, 0.75, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in+"/"+tt.dir.String(), func(t *testing.T) {
			r, err := ResolveString(tt.in, tt.dir)
			require.NoError(t, err)
			assert.Equal(t, tt.percent, r.Percent)
			assert.Equal(t, tt.distance, r.Distance.Value())
			assert.Equal(t, tt.targetPercent, r.TargetPercent)
			assert.False(t, r.Distance.IsDynamic())
		})
	}
}

func TestAliasIsDirectionSensitive(t *testing.T) {
	top, err := Top.Fraction(TopToBottom)
	require.NoError(t, err)
	assert.Equal(t, 0.0, top)

	top, err = Top.Fraction(BottomToTop)
	require.NoError(t, err)
	assert.Equal(t, 1.0, top)

	_, err = Alias("middle").Fraction(TopToBottom)
	assert.ErrorIs(t, err, ErrInvalidPlacement)
}

func TestFlipIsInvolutive(t *testing.T) {
	for _, in := range []Placement{Percent(0.25), Pixels(-40), Bottom, PrevPage,
		Partial{Percent: Ratio(0.75), Distance: Fixed(12), TargetPercent: Ratio(-0.5)}} {
		orig, err := Resolve(in, TopToBottom)
		require.NoError(t, err)

		b2t := orig.Convert(TopToBottom, BottomToTop)
		back := b2t.Convert(BottomToTop, TopToBottom)
		assert.Equal(t, orig, back, "placement %v", in)
		assert.Equal(t, orig, orig.Flip().Flip(), "placement %v", in)
	}
}

func TestResolvePartial(t *testing.T) {
	r, err := Resolve(Partial{Percent: Named(Bottom), Distance: Fixed(-20), TargetPercent: Ratio(0.5)}, BottomToTop)
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.Percent)
	assert.Equal(t, -20.0, r.Distance.Value())
	assert.Equal(t, 0.5, r.TargetPercent)

	// The record's own direction wins over the caller's.
	r, err = Resolve(Partial{Percent: Named(Top), Distance: Fixed(30), Direction: TopToBottom.Ptr()}, BottomToTop)
	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Percent)
	assert.Equal(t, -30.0, r.Distance.Value())

	_, err = Resolve(Partial{TargetPercent: Named("sideways")}, TopToBottom)
	assert.ErrorIs(t, err, ErrInvalidPlacement)
}

func TestResolveRejectsBadInput(t *testing.T) {
	_, err := Resolve(nil, TopToBottom)
	assert.ErrorIs(t, err, ErrInvalidPlacement)

	_, err = Resolve(Dynamic(nil), TopToBottom)
	assert.ErrorIs(t, err, ErrInvalidPlacement)

	assert.Panics(t, func() { MustParse("sideways") })
}

func TestCalcPlacement(t *testing.T) {
	rects := Rects{Root: geom.Sized(1280, 800), Target: geom.NewRect(0, 300, 100, 200)}

	r := Resolved{Percent: 0.5, Distance: Fixed(10), TargetPercent: -1}
	assert.Equal(t, 800*0.5+10-200, r.Calc(rects))

	// "10px" from the top is 790px up from the bottom of an 800px root.
	r = MustResolve(Pixels(10), TopToBottom)
	assert.Equal(t, 790.0, r.Calc(rects))
}

func TestDynamicDistanceIsEvaluatedEveryCall(t *testing.T) {
	toolbar := 50.0
	r, err := Resolve(Dynamic(func() float64 { return toolbar }), BottomToTop)
	require.NoError(t, err)
	require.True(t, r.Distance.IsDynamic())

	rects := Rects{Root: geom.Sized(100, 1000)}
	assert.Equal(t, 50.0, r.Calc(rects))
	toolbar = 80
	assert.Equal(t, 80.0, r.Calc(rects))

	// Flipping keeps it dynamic and mirrors the sign.
	flipped := r.Flip()
	assert.True(t, flipped.Distance.IsDynamic())
	assert.Equal(t, 1000-80.0, flipped.Calc(rects))
}

func TestMove(t *testing.T) {
	from := Resolved{Percent: 0.5, Distance: Fixed(10), TargetPercent: 1}
	by := Resolved{Percent: -0.25, Distance: Fixed(5)}
	moved := from.Move(by)
	assert.Equal(t, 0.25, moved.Percent)
	assert.Equal(t, 15.0, moved.Distance.Value())
	assert.Equal(t, 1.0, moved.TargetPercent)
	assert.False(t, moved.Distance.IsDynamic())

	n := 1.0
	dyn := from.Move(Resolved{Distance: DynamicDistance(func() float64 { return n })})
	assert.True(t, dyn.Distance.IsDynamic())
	assert.Equal(t, 11.0, dyn.Distance.Value())
	n = 4
	assert.Equal(t, 14.0, dyn.Distance.Value())

	back := moved.Move(by.Neg())
	assert.Equal(t, from.Percent, back.Percent)
	assert.Equal(t, from.Distance.Value(), back.Distance.Value())
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("t2b")
	require.NoError(t, err)
	assert.Equal(t, TopToBottom, d)
	d, err = ParseDirection("b2t")
	require.NoError(t, err)
	assert.Equal(t, BottomToTop, d)
	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}
