package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/chrisuehlinger/scrollwatch/dom"
	"github.com/chrisuehlinger/scrollwatch/frame"
	"github.com/chrisuehlinger/scrollwatch/html"
	"github.com/chrisuehlinger/scrollwatch/layout"
	"github.com/chrisuehlinger/scrollwatch/placement"
	"github.com/chrisuehlinger/scrollwatch/scroll"
)

// The target spans 1000..1200 of a 3200px document in an 800px window, so
// it is in view for scroll offsets 200..1200.
const testPage = `<div style="height: 1000px"></div>
<div id="target" style="height: 200px"></div>
<div id="box" style="height: 300px; overflow: scroll">
  <div id="inner" style="height: 1000px"></div>
</div>
<div style="height: 1700px"></div>`

func newTestSimulator(t *testing.T) (*Simulator, *dom.Window) {
	t.Helper()
	w := dom.NewWindow(1000, 800)
	_, err := html.Load(w, testPage)
	require.NoError(t, err)
	layout.Layout(w.Document())

	log := zaptest.NewLogger(t)
	reg := scroll.NewRegistry(w.Host(), scroll.WithLogger(log))
	s, err := New(w, reg, WithFrameRate(4), WithLogger(log))
	require.NoError(t, err)
	return s, w
}

func ptr(v float64) *float64 { return &v }

func stateEntries(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Kind == KindState {
			out = append(out, e)
		}
	}
	return out
}

func progressDistances(entries []Entry) []float64 {
	var out []float64
	for _, e := range entries {
		if e.Kind == KindProgress {
			out = append(out, e.Distance)
		}
	}
	return out
}

func TestRunTweensTheWindow(t *testing.T) {
	s, w := newTestSimulator(t)
	_, err := s.Observe(Observer{Name: "hero", Target: "target", Progress: true})
	require.NoError(t, err)

	report, err := s.Run(context.Background(), []Step{
		{To: ptr(1000), Duration: time.Second, Easing: "linear"},
	})
	require.NoError(t, err)

	assert.Equal(t, Report{Steps: 1, Frames: 4, ScrollTop: 1000}, report)
	assert.Equal(t, 1000.0, w.ScrollY())
	assert.Equal(t, 4, s.Frame())

	assert.Equal(t, []Entry{
		{Frame: 1, Observer: "hero", Kind: KindState, State: "inView", Old: "before"},
	}, stateEntries(s.Recorder().Entries()))
	assert.Equal(t, []float64{-200, 50, 300, 550, 800}, progressDistances(s.Recorder().Entries()))
}

func TestRunJumpsAndIdles(t *testing.T) {
	s, w := newTestSimulator(t)
	_, err := s.Observe(Observer{Target: "target"})
	require.NoError(t, err)

	report, err := s.Run(context.Background(), []Step{
		{By: ptr(300)},
		{Duration: 500 * time.Millisecond},
		{To: ptr(1300)},
	})
	require.NoError(t, err)

	assert.Equal(t, Report{Steps: 3, Frames: 4, ScrollTop: 1300}, report)
	assert.Equal(t, 1300.0, w.ScrollY())
	assert.Equal(t, []Entry{
		{Frame: 1, Observer: "#target", Kind: KindState, State: "inView", Old: "before"},
		{Frame: 4, Observer: "#target", Kind: KindState, State: "after", Old: "inView"},
	}, stateEntries(s.Recorder().Entries()))
}

func TestRunScrollsContainers(t *testing.T) {
	s, w := newTestSimulator(t)

	report, err := s.Run(context.Background(), []Step{
		{Container: "box", To: ptr(5000)},
	})
	require.NoError(t, err)
	assert.Equal(t, 700.0, report.ScrollTop, "offset is clamped to the scroll range")
	assert.Equal(t, 700.0, w.Document().GetElementByID("box").ScrollTop())
	assert.Zero(t, w.ScrollY())
}

func TestRunErrors(t *testing.T) {
	s, _ := newTestSimulator(t)

	_, err := s.Run(context.Background(), []Step{{Container: "nope", To: ptr(1)}})
	assert.ErrorIs(t, err, ErrNoScroller)

	_, err = s.Run(context.Background(), []Step{{Container: "target", To: ptr(1)}})
	assert.ErrorIs(t, err, ErrNoScroller)

	report, err := s.Run(context.Background(), []Step{
		{To: ptr(100)},
		{To: ptr(200), Duration: time.Second, Easing: "wobbly"},
	})
	assert.ErrorIs(t, err, ErrUnknownEasing)
	assert.EqualError(t, err, `step 2: sim: unknown easing "wobbly"`)
	assert.Equal(t, 1, report.Steps)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Run(ctx, []Step{{To: ptr(100)}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRequiresFrameQueue(t *testing.T) {
	loop := frame.NewLoop()
	defer loop.Close()
	w := dom.NewWindow(1000, 800, dom.WithFrames(loop))
	_, err := New(w, scroll.NewRegistry(w.Host()))
	assert.ErrorIs(t, err, ErrNoFrameQueue)
}

func TestObserveErrors(t *testing.T) {
	s, _ := newTestSimulator(t)

	_, err := s.Observe(Observer{Target: "nope"})
	assert.Error(t, err)

	_, err = s.Observe(Observer{Target: "inner", Root: "nope"})
	assert.Error(t, err)

	_, err = s.Observe(Observer{Target: "target", Start: "sideways"})
	assert.ErrorIs(t, err, placement.ErrInvalidPlacement)

	assert.Empty(t, s.Recorder().Trackers())
}

func TestObserveInsideContainer(t *testing.T) {
	s, _ := newTestSimulator(t)
	tr, err := s.Observe(Observer{Target: "inner", Root: "box"})
	require.NoError(t, err)
	require.Len(t, s.Recorder().Trackers(), 1)

	s.Recorder().Stop()
	assert.True(t, tr.Element().Destroyed())
}

func TestEasing(t *testing.T) {
	for _, name := range []string{"", "linear", "InOutCubic", "in-out-cubic", "out_bounce", "Out Elastic"} {
		fn, err := Easing(name)
		require.NoError(t, err, name)
		assert.NotNil(t, fn, name)
	}

	_, err := Easing("sideways")
	assert.ErrorIs(t, err, ErrUnknownEasing)

	names := EasingNames()
	assert.Len(t, names, len(easings))
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "inoutquad")
}
