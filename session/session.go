// Package session assembles a headless page (document, layout, scroll
// registry and script runtime) and runs scenarios against it.
package session

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/chrisuehlinger/scrollwatch/config"
	"github.com/chrisuehlinger/scrollwatch/dom"
	"github.com/chrisuehlinger/scrollwatch/frame"
	"github.com/chrisuehlinger/scrollwatch/html"
	"github.com/chrisuehlinger/scrollwatch/js"
	"github.com/chrisuehlinger/scrollwatch/layout"
	"github.com/chrisuehlinger/scrollwatch/network"
	"github.com/chrisuehlinger/scrollwatch/scroll"
	"github.com/chrisuehlinger/scrollwatch/sim"
)

// Options configure Open.
type Options struct {
	Width  float64
	Height float64
	// Loader loads <script src> references and script files. Without one
	// only local files and data: URLs relative to the working directory
	// are loaded.
	Loader *network.Loader
	// Console receives console.* output of scripts.
	Console io.Writer
	Log     *zap.Logger
	// Loop, when set, owns the window's animation frames. Work on the
	// session then goes through Do.
	Loop *frame.Loop
}

// Session is one loaded page.
type Session struct {
	Window   *dom.Window
	Page     *html.Page
	Registry *scroll.Registry
	Scripts  *js.ScriptExecutor

	loader *network.Loader
	loop   *frame.Loop
	log    *zap.Logger
}

// Open parses source, lays it out and prepares a script runtime bound to
// the page. Page scripts are not run yet.
func Open(source string, opts Options) (*Session, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	console := opts.Console
	if console == nil {
		console = io.Discard
	}

	loader := opts.Loader
	if loader == nil {
		loader = network.NewLoader(nil, "", network.WithLogger(log.Named("network")))
	}

	var wopts []dom.WindowOption
	if opts.Loop != nil {
		wopts = append(wopts, dom.WithFrames(opts.Loop.Queue()))
	}
	w := dom.NewWindow(opts.Width, opts.Height, wopts...)
	page, err := html.Load(w, source)
	if err != nil {
		return nil, err
	}
	layout.Layout(w.Document())

	reg := scroll.NewRegistry(w.Host(), scroll.WithLogger(log.Named("scroll")))
	rt := js.NewRuntime(js.WithLogger(log.Named("js")), js.WithConsole(console))
	s := &Session{
		Window:   w,
		Page:     page,
		Registry: reg,
		Scripts:  js.NewScriptExecutor(rt, w, reg, loader),
		loader:   loader,
		loop:     opts.Loop,
		log:      log,
	}
	log.Debug("Page loaded",
		zap.String("title", page.Title),
		zap.Int("scripts", len(page.Scripts)),
		zap.Float64("height", w.MaxScrollY()+w.InnerHeight()))
	return s, nil
}

// Do runs fn on the session's frame loop and waits for it. Without a loop
// fn runs on the calling goroutine.
func (s *Session) Do(ctx context.Context, fn func() error) error {
	if s.loop == nil {
		return fn()
	}
	var err error
	if cerr := s.loop.Call(ctx, func() { err = fn() }); cerr != nil {
		return cerr
	}
	return err
}

// RunPageScripts runs the scripts of the page in document order and lets
// the event loop settle.
func (s *Session) RunPageScripts(ctx context.Context, settleLimit int) {
	s.Scripts.ExecuteScripts(ctx, s.Page)
	s.Scripts.Settle(settleLimit)
}

// RunFile executes the script at ref, a path or URL, and lets the event
// loop settle.
func (s *Session) RunFile(ctx context.Context, ref string, settleLimit int) error {
	data, err := s.loader.Load(ctx, ref)
	if err != nil {
		return fmt.Errorf("unable to read script: %w", err)
	}
	if err := s.Scripts.Runtime().ExecuteScript(string(data), ref); err != nil {
		return err
	}
	s.Scripts.Settle(settleLimit)
	return nil
}

// ScriptErrors returns every error scripts raised so far as one error.
func (s *Session) ScriptErrors() error {
	return multierr.Combine(s.Scripts.Runtime().Errors()...)
}

// Result is the outcome of a simulated scenario.
type Result struct {
	Steps     int         `yaml:"steps"`
	Frames    int         `yaml:"frames"`
	ScrollTop float64     `yaml:"scroll_top"`
	Entries   []sim.Entry `yaml:"entries"`
}

// Simulate loads the scenario's page, attaches its observers and plays its
// script. Script errors raised by the page do not stop the run; they are
// returned together with the result.
func Simulate(ctx context.Context, sc *config.Scenario, console io.Writer, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	client, err := network.NewClient()
	if err != nil {
		return nil, err
	}
	loader := network.NewLoader(client, sc.ScriptsBase(), network.WithLogger(log.Named("network")))
	source, err := sc.Source(ctx, loader)
	if err != nil {
		return nil, err
	}
	s, err := Open(source, Options{
		Width:   sc.Viewport.Width,
		Height:  sc.Viewport.Height,
		Loader:  loader,
		Console: console,
		Log:     log,
	})
	if err != nil {
		return nil, err
	}

	opts := []sim.Option{
		sim.WithFrameRate(sc.Viewport.FrameRate),
		sim.WithLogger(log.Named("sim")),
	}
	if sc.Document.RunScripts {
		s.RunPageScripts(ctx, sc.Document.SettleLimit)
		opts = append(opts, sim.WithFrameHook(func() {
			s.Scripts.Drain(sc.Document.SettleLimit)
		}))
	}

	simulator, err := sim.New(s.Window, s.Registry, opts...)
	if err != nil {
		return nil, err
	}
	for _, o := range sc.SimObservers() {
		if _, err := simulator.Observe(o); err != nil {
			return nil, err
		}
	}

	report, err := simulator.Run(ctx, sc.SimSteps())
	simulator.Recorder().Stop()
	result := &Result{
		Steps:     report.Steps,
		Frames:    report.Frames,
		ScrollTop: report.ScrollTop,
		Entries:   simulator.Recorder().Entries(),
	}
	if err != nil {
		return result, err
	}
	log.Info("Scenario finished",
		zap.Int("steps", result.Steps),
		zap.Int("frames", result.Frames),
		zap.Int("entries", len(result.Entries)))
	return result, s.ScriptErrors()
}
