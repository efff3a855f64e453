package ui

import (
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/chrisuehlinger/scrollwatch/geom"
	"github.com/chrisuehlinger/scrollwatch/scroll"
	"github.com/chrisuehlinger/scrollwatch/watch"
)

// block is a rectangle placed by hand inside a layout-free container.
func block(x, y, w, h float32) *canvas.Rectangle {
	r := canvas.NewRectangle(color.Transparent)
	r.Move(fyne.NewPos(x, y))
	r.Resize(fyne.NewSize(w, h))
	return r
}

// spacer gives a layout-free container its scroll height.
func spacer(w, h float32) *canvas.Rectangle {
	r := canvas.NewRectangle(color.Transparent)
	r.SetMinSize(fyne.NewSize(w, h))
	return r
}

type page struct {
	host   *Host
	target *canvas.Rectangle
	box    *container.Scroll
	inner  *canvas.Rectangle
}

// newPage builds a 400x300 page with 2000px of content. The target sits at
// 500..600 and a 200px scroll box at 1000 holds 600px with an inner block
// at 300..350.
func newPage(t *testing.T) *page {
	t.Helper()
	test.NewTempApp(t)

	inner := block(0, 300, 400, 50)
	boxContent := container.NewWithoutLayout(spacer(400, 600), inner)
	box := container.NewVScroll(boxContent)
	box.Move(fyne.NewPos(0, 1000))
	box.Resize(fyne.NewSize(400, 200))
	boxContent.Resize(fyne.NewSize(400, 600))

	target := block(0, 500, 400, 100)
	content := container.NewWithoutLayout(spacer(400, 2000), target, box)
	scroller := container.NewVScroll(content)
	h := NewHost(scroller)
	h.Resize(fyne.NewSize(400, 300))
	content.Resize(fyne.NewSize(400, 2000))

	return &page{host: h, target: target, box: box, inner: inner}
}

func TestHostScrollRoot(t *testing.T) {
	p := newPage(t)
	root := p.host.Page()
	target := p.host.Target(p.target, root)

	assert.Equal(t, geom.Sized(400, 300), root.GetBoundingClientRect())
	assert.Equal(t, geom.NewRect(0, 500, 400, 100), target.GetBoundingClientRect())

	fired := 0
	remove := root.AddScrollListener(func() { fired++ })

	root.ScrollTo(250)
	assert.Equal(t, 250.0, root.ScrollTop())
	assert.Equal(t, geom.NewRect(0, 250, 400, 100), target.GetBoundingClientRect())
	assert.Equal(t, 1, fired)

	root.ScrollTo(250)
	assert.Equal(t, 1, fired, "unchanged offsets do not fire")

	root.ScrollTo(5000)
	assert.Equal(t, 1700.0, root.ScrollTop(), "clamped to the content")
	assert.Equal(t, 2, fired)

	remove()
	root.ScrollTo(0)
	assert.Equal(t, 2, fired)
	assert.Zero(t, root.scrolled.len())
}

func TestHostNestedRoot(t *testing.T) {
	p := newPage(t)
	box := p.host.Nested(p.box, p.host.Page())
	inner := p.host.Target(p.inner, box)

	p.host.Page().ScrollTo(900)
	assert.Equal(t, geom.NewRect(0, 100, 400, 200), box.GetBoundingClientRect())
	assert.Equal(t, geom.NewRect(0, 400, 400, 50), inner.GetBoundingClientRect())

	box.ScrollTo(250)
	assert.Equal(t, 250.0, box.ScrollTop())
	assert.Equal(t, geom.NewRect(0, 150, 400, 50), inner.GetBoundingClientRect())

	resized := 0
	stop := box.ObserveResize(func() { resized++ })
	box.Resize(fyne.NewSize(400, 250))
	assert.Equal(t, 1, resized)
	stop()
	box.Resize(fyne.NewSize(400, 200))
	assert.Equal(t, 1, resized)
}

func TestHostResizeListeners(t *testing.T) {
	p := newPage(t)
	resized := 0
	remove := p.host.AddResizeListener(func() { resized++ })

	p.host.Resize(fyne.NewSize(400, 300))
	assert.Equal(t, 0, resized, "same size")
	p.host.Resize(fyne.NewSize(400, 350))
	assert.Equal(t, 1, resized)

	remove()
	p.host.Resize(fyne.NewSize(400, 300))
	assert.Equal(t, 1, resized)
}

func TestHostDrivesRegistrations(t *testing.T) {
	p := newPage(t)
	reg := scroll.NewRegistry(p.host, scroll.WithLogger(zaptest.NewLogger(t)))
	target := p.host.Target(p.target, p.host.Page())

	var events []scroll.Event
	dispose, err := watch.Register(reg, target, watch.RegisterOptions{
		Handler: func(e scroll.Event) { events = append(events, e) },
	})
	require.NoError(t, err)
	defer dispose()

	p.host.Page().ScrollTo(250)
	assert.Empty(t, events, "handlers run on the next frame")
	assert.Equal(t, 1, p.host.Flush())

	require.Len(t, events, 1)
	assert.Equal(t, 50.0, events[0].Dist)
	assert.Equal(t, 400.0, events[0].Total)
	assert.True(t, events[0].InRange)
	assert.Equal(t, 250.0, events[0].Direction)
}

func TestViewerTracksSections(t *testing.T) {
	a := test.NewTempApp(t)
	v, err := NewViewerWithApp(a, DefaultSections, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer v.Window().Close()

	v.Host().Resize(fyne.NewSize(600, 500))
	v.Host().Flush()

	v.ScrollBy(1)
	v.Host().Flush()
	states := v.States()
	require.Len(t, states, len(DefaultSections))
	assert.Equal(t, watch.InView, states[0])
	assert.Equal(t, watch.Before, states[len(states)-1])

	v.ScrollBy(100000)
	v.Host().Flush()
	states = v.States()
	assert.Equal(t, watch.After, states[0])
	assert.Equal(t, watch.InView, states[len(states)-1])
}
