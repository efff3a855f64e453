package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/scrollwatch/scroll"
	"github.com/chrisuehlinger/scrollwatch/watch"
)

// Section is one observed block of the demo page.
type Section struct {
	Name   string
	Height float32
	Color  color.Color
}

// DefaultSections is the demo page.
var DefaultSections = []Section{
	{Name: "Intro", Height: 600, Color: color.NRGBA{R: 0x2e, G: 0x86, B: 0xab, A: 0xff}},
	{Name: "Features", Height: 400, Color: color.NRGBA{R: 0xa2, G: 0x3b, B: 0x72, A: 0xff}},
	{Name: "Gallery", Height: 800, Color: color.NRGBA{R: 0xf1, G: 0x8f, B: 0x01, A: 0xff}},
	{Name: "Pricing", Height: 300, Color: color.NRGBA{R: 0xc7, G: 0x3e, B: 0x1d, A: 0xff}},
	{Name: "Footer", Height: 500, Color: color.NRGBA{R: 0x3b, G: 0x1f, B: 0x2b, A: 0xff}},
}

// row is the status line of one section.
type row struct {
	label    *widget.Label
	progress *widget.ProgressBar
	tracker  *watch.Tracker
}

// Viewer shows a scrolling page and reports the state of every section
// while the user scrolls it.
type Viewer struct {
	app    fyne.App
	window fyne.Window
	host   *Host
	reg    *scroll.Registry
	log    *zap.Logger

	page    *container.Scroll
	content *fyne.Container
	status  *fyne.Container
	rows    []*row
}

// NewViewer creates the demo window inside a new Fyne app.
func NewViewer(log *zap.Logger) (*Viewer, error) {
	return NewViewerWithApp(app.New(), DefaultSections, log)
}

// NewViewerWithApp creates the demo window inside a. Tests pass the Fyne
// test app.
func NewViewerWithApp(a fyne.App, sections []Section, log *zap.Logger) (*Viewer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	v := &Viewer{
		app:    a,
		window: a.NewWindow("scrollwatch"),
		log:    log,
	}
	v.window.Resize(fyne.NewSize(900, 600))

	if err := v.setupUI(sections); err != nil {
		return nil, err
	}
	v.setupKeyboardShortcuts()
	return v, nil
}

func (v *Viewer) setupUI(sections []Section) error {
	v.content = container.NewVBox()
	for _, s := range sections {
		block := canvas.NewRectangle(s.Color)
		block.SetMinSize(fyne.NewSize(400, s.Height))
		title := canvas.NewText(s.Name, color.White)
		title.TextSize = 24
		v.content.Add(container.NewStack(block, container.NewCenter(title)))
	}
	v.page = container.NewVScroll(v.content)
	v.host = NewHost(v.page)
	v.reg = scroll.NewRegistry(v.host, scroll.WithLogger(v.log))

	v.status = container.NewVBox()
	for i, s := range sections {
		r := &row{
			label:    widget.NewLabel(s.Name + ": before"),
			progress: widget.NewProgressBar(),
		}
		tr, err := watch.Track(v.reg, v.host.Target(v.content.Objects[i], v.host.Page()), watch.TrackOptions{
			Handlers: v.handlers(s.Name, r),
		})
		if err != nil {
			return fmt.Errorf("track %s: %w", s.Name, err)
		}
		r.tracker = tr
		v.rows = append(v.rows, r)
		v.status.Add(container.NewVBox(r.label, r.progress))
	}

	pageBox := container.New(&pageLayout{host: v.host}, v.page)
	v.window.SetContent(container.NewBorder(nil, nil, nil,
		container.NewVScroll(v.status), pageBox))
	return nil
}

// pageLayout sizes the page through the host so that roots learn about the
// new size.
type pageLayout struct {
	host *Host
}

func (l *pageLayout) Layout(_ []fyne.CanvasObject, size fyne.Size) {
	l.host.Resize(size)
}

func (l *pageLayout) MinSize([]fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(400, 200)
}

func (v *Viewer) handlers(name string, r *row) watch.Handlers {
	return watch.Handlers{
		OnStateChange: func(c watch.StateChange) watch.Signal {
			r.label.SetText(fmt.Sprintf("%s: %s", name, c.State))
			v.log.Info("Section changed state",
				zap.String("section", name),
				zap.Stringer("from", c.Old),
				zap.Stringer("to", c.State))
			return watch.Continue
		},
		Always: func(p watch.Progress) watch.Signal {
			r.progress.SetValue(p.Ratio())
			return watch.Continue
		},
	}
}

// setupKeyboardShortcuts sets up paging shortcuts.
func (v *Viewer) setupKeyboardShortcuts() {
	page := func() float64 { return float64(v.page.Size().Height) }

	// Ctrl+Down: next page
	v.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyDown,
		Modifier: fyne.KeyModifierControl,
	}, func(_ fyne.Shortcut) {
		v.ScrollBy(page())
	})

	// Ctrl+Up: previous page
	v.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyUp,
		Modifier: fyne.KeyModifierControl,
	}, func(_ fyne.Shortcut) {
		v.ScrollBy(-page())
	})

	// Ctrl+Home: top
	v.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyHome,
		Modifier: fyne.KeyModifierControl,
	}, func(_ fyne.Shortcut) {
		v.host.Page().ScrollTo(0)
	})
}

// ScrollBy scrolls the page by dy.
func (v *Viewer) ScrollBy(dy float64) {
	root := v.host.Page()
	root.ScrollTo(root.ScrollTop() + dy)
}

// Host returns the scroll host of the page.
func (v *Viewer) Host() *Host {
	return v.host
}

// States returns the current state of every section.
func (v *Viewer) States() []watch.State {
	out := make([]watch.State, len(v.rows))
	for i, r := range v.rows {
		out[i] = r.tracker.State()
	}
	return out
}

// Window returns the Fyne window.
func (v *Viewer) Window() fyne.Window {
	return v.window
}

// Run shows the window and blocks until it is closed.
func (v *Viewer) Run() {
	v.app.Lifecycle().SetOnStarted(v.host.Start)
	v.app.Lifecycle().SetOnStopped(v.host.Stop)
	v.window.ShowAndRun()
}
