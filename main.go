package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"github.com/chrisuehlinger/scrollwatch/config"
	"github.com/chrisuehlinger/scrollwatch/frame"
	"github.com/chrisuehlinger/scrollwatch/network"
	"github.com/chrisuehlinger/scrollwatch/session"
	"github.com/chrisuehlinger/scrollwatch/state"
	"github.com/chrisuehlinger/scrollwatch/ui"
)

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	env := state.EnvFromContext(ctx)

	logging := config.Default().Logging
	if path := cmd.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
		}
		env.Cfg = cfg
		logging = cfg.Logging
	}
	if cmd.Bool("debug") {
		logging.ConsoleLogger.Level = "debug"
	}

	log, err := logging.Prepare()
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.Log = log
	env.RedirectStdLog()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("runtime", runtime.Version()))
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	env.RestoreStdLog()
	return nil
}

var errWasHandled bool

// this is called before appContext is destroyed, so we have a chance to
// properly log any error from subcommand
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)
	if !env.Log.Core().Enabled(zap.ErrorLevel) {
		// logs are not ready yet, main reports the error
		return
	}
	for _, e := range multierr.Errors(err) {
		env.Log.Error("Program ended with error", zap.Error(e))
	}
	errWasHandled = true
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            config.AppName,
		Usage:           "observes scroll positions and viewport intersections of page elements",
		Version:         runtime.Version(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load scenario from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log debug messages to the console"},
		},
		Commands: []*cli.Command{
			{
				Name:      "simulate",
				Usage:     "Plays the scroll script of a scenario and reports what its observers saw",
				ArgsUsage: "[DESTINATION]",
				Action:    runSimulate,
			},
			{
				Name:  "script",
				Usage: "Loads a page, runs its scripts and the given script files",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "html", Required: true, Usage: "page to load from `FILE` or URL"},
					&cli.StringSliceFlag{Name: "js", Usage: "run script `FILE` after the page scripts (repeatable)"},
					&cli.FloatFlag{Name: "width", Value: 1280, Usage: "viewport width"},
					&cli.FloatFlag{Name: "height", Value: 800, Usage: "viewport height"},
					&cli.IntFlag{Name: "settle", Value: 100, Usage: "maximum event loop rounds after each script"},
				},
				Action: runScript,
			},
			{
				Name:   "view",
				Usage:  "Opens a window with a scrolling demo page",
				Action: runView,
			},
			{
				Name:      "dumpconfig",
				Usage:     "Dumps the loaded scenario, or the defaults (YAML)",
				ArgsUsage: "[DESTINATION]",
				Action:    outputConfiguration,
			},
		},
	}

	var err error
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func runSimulate(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if env.Cfg == nil {
		return fmt.Errorf("simulate needs a scenario, use --config")
	}

	result, err := session.Simulate(ctx, env.Cfg, os.Stdout, env.Log)
	if result != nil {
		data, merr := yaml.Marshal(result)
		if merr != nil {
			return multierr.Append(err, fmt.Errorf("unable to marshal result: %w", merr))
		}
		if werr := writeOutput(env, cmd.Args().Get(0), data); werr != nil {
			return multierr.Append(err, werr)
		}
	}
	return err
}

func runScript(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	page := cmd.String("html")
	base := page
	if !network.IsHTTP(page) {
		abs, err := filepath.Abs(page)
		if err != nil {
			return fmt.Errorf("unable to resolve page path: %w", err)
		}
		page, base = abs, filepath.Dir(abs)
	}

	client, err := network.NewClient()
	if err != nil {
		return err
	}
	loader := network.NewLoader(client, base, network.WithLogger(env.Log.Named("network")))
	source, err := loader.Load(ctx, page)
	if err != nil {
		return fmt.Errorf("unable to read page: %w", err)
	}

	// page scripts, frames and the scroll events they cause all run on the loop
	loop := frame.NewLoop(frame.WithLogger(env.Log.Named("frame")))
	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()
	defer func() {
		loop.Close()
		<-loopDone
	}()

	s, err := session.Open(string(source), session.Options{
		Width:   cmd.Float("width"),
		Height:  cmd.Float("height"),
		Loader:  loader,
		Console: os.Stdout,
		Log:     env.Log,
		Loop:    loop,
	})
	if err != nil {
		return err
	}
	settle := cmd.Int("settle")
	if err := s.Do(ctx, func() error {
		s.RunPageScripts(ctx, settle)
		return nil
	}); err != nil {
		return err
	}
	for _, file := range cmd.StringSlice("js") {
		env.Log.Debug("Running script", zap.String("file", file))
		ref := file
		if !network.IsHTTP(file) {
			// relative to the working directory, not to the page
			if ref, err = filepath.Abs(file); err != nil {
				return fmt.Errorf("unable to resolve script path: %w", err)
			}
		}
		if err := s.Do(ctx, func() error { return s.RunFile(ctx, ref, settle) }); err != nil {
			return fmt.Errorf("script %s: %w", file, err)
		}
	}
	return s.Do(ctx, func() error {
		env.Log.Info("Scripts finished",
			zap.Float64("scrollY", s.Window.ScrollY()),
			zap.Int("errors", len(s.Scripts.Runtime().Errors())))
		return s.ScriptErrors()
	})
}

func runView(ctx context.Context, _ *cli.Command) error {
	env := state.EnvFromContext(ctx)
	v, err := ui.NewViewer(env.Log)
	if err != nil {
		return err
	}
	v.Run()
	return nil
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	cfg, which := env.Cfg, "actual"
	if cfg == nil {
		cfg, which = config.Default(), "default"
	}
	data, err := config.Dump(cfg)
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}
	env.Log.Debug("Outputing configuration", zap.String("state", which))
	return writeOutput(env, cmd.Args().Get(0), data)
}

func writeOutput(env *state.LocalEnv, fname string, data []byte) error {
	if fname == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(fname, data, 0644); err != nil {
		return fmt.Errorf("unable to write destination file '%s': %w", fname, err)
	}
	env.Log.Info("Output written", zap.String("file", fname))
	return nil
}
