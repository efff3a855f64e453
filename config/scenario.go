// Package config loads scroll scenarios and logging settings from YAML.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v3"

	"github.com/chrisuehlinger/scrollwatch/network"
	"github.com/chrisuehlinger/scrollwatch/placement"
	"github.com/chrisuehlinger/scrollwatch/sim"
	"github.com/chrisuehlinger/scrollwatch/viewport"
)

// Version is the only scenario format version understood.
const Version = 1

type (
	DocumentConfig struct {
		// HTML is the page source. Exactly one of HTML, Path and URL is set.
		HTML string `yaml:"html,omitempty"`
		// Path is relative to the scenario file.
		Path string `yaml:"path,omitempty"`
		URL  string `yaml:"url,omitempty"`
		// ScriptsDir resolves external <script src> references. It defaults
		// to the location of the page.
		ScriptsDir  string `yaml:"scripts_dir,omitempty"`
		RunScripts  bool   `yaml:"run_scripts"`
		SettleLimit int    `yaml:"settle_limit"`
	}

	ViewportConfig struct {
		Width     float64 `yaml:"width"`
		Height    float64 `yaml:"height"`
		FrameRate int     `yaml:"frame_rate"`
	}

	ObserverConfig struct {
		Name                string `yaml:"name,omitempty"`
		Target              string `yaml:"target"`
		Root                string `yaml:"root,omitempty"`
		Start               string `yaml:"start,omitempty"`
		End                 string `yaml:"end,omitempty"`
		Boundary            string `yaml:"boundary,omitempty"`
		Before              string `yaml:"before,omitempty"`
		After               string `yaml:"after,omitempty"`
		ForceInViewBoundary bool   `yaml:"force_in_view_boundary,omitempty"`
		Progress            bool   `yaml:"progress,omitempty"`
	}

	StepConfig struct {
		Container string        `yaml:"container,omitempty"`
		To        *float64      `yaml:"to,omitempty"`
		By        *float64      `yaml:"by,omitempty"`
		Duration  time.Duration `yaml:"duration,omitempty"`
		Easing    string        `yaml:"easing,omitempty"`
	}

	Scenario struct {
		Version   int              `yaml:"version"`
		Document  DocumentConfig   `yaml:"document"`
		Viewport  ViewportConfig   `yaml:"viewport"`
		Observers []ObserverConfig `yaml:"observers"`
		Script    []StepConfig     `yaml:"script"`
		Logging   LoggingConfig    `yaml:"logging"`

		// dir is the directory relative paths are resolved against.
		dir string
	}
)

// Default returns a scenario with every optional value filled in.
func Default() *Scenario {
	return &Scenario{
		Version: Version,
		Document: DocumentConfig{
			RunScripts:  true,
			SettleLimit: 100,
		},
		Viewport: ViewportConfig{
			Width:     1280,
			Height:    800,
			FrameRate: sim.DefaultFrameRate,
		},
		Logging: LoggingConfig{
			ConsoleLogger: LoggerConfig{Level: "normal"},
			FileLogger:    LoggerConfig{Level: "none", Mode: "overwrite"},
		},
	}
}

func unmarshalScenario(data []byte, sc *Scenario) error {
	// Unknown keys are typos, not extensions.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(sc); err != nil {
		return fmt.Errorf("failed to decode scenario: %w", err)
	}
	return nil
}

// Parse decodes a scenario on top of Default and validates it. Relative
// paths are resolved against dir.
func Parse(data []byte, dir string) (*Scenario, error) {
	sc := Default()
	if err := unmarshalScenario(data, sc); err != nil {
		return nil, err
	}
	sc.dir = dir
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

// Load reads the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	sc, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return sc, nil
}

// Validate reports every problem of the scenario at once.
func (sc *Scenario) Validate() error {
	var err error
	if sc.Version != Version {
		err = multierr.Append(err, fmt.Errorf("version: unsupported version %d", sc.Version))
	}

	sources := 0
	for _, v := range []string{sc.Document.HTML, sc.Document.Path, sc.Document.URL} {
		if v != "" {
			sources++
		}
	}
	switch {
	case sources == 0:
		err = multierr.Append(err, errors.New("document: one of html, path or url is required"))
	case sources > 1:
		err = multierr.Append(err, errors.New("document: html, path and url are mutually exclusive"))
	}
	if sc.Document.URL != "" && !network.IsHTTP(sc.Document.URL) {
		err = multierr.Append(err, fmt.Errorf("document: url %q is not an http(s) URL", sc.Document.URL))
	}
	if sc.Document.SettleLimit < 0 {
		err = multierr.Append(err, errors.New("document: settle_limit must not be negative"))
	}

	if sc.Viewport.Width <= 0 || sc.Viewport.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("viewport: size %vx%v must be positive", sc.Viewport.Width, sc.Viewport.Height))
	}
	if sc.Viewport.FrameRate <= 0 {
		err = multierr.Append(err, fmt.Errorf("viewport: frame_rate %d must be positive", sc.Viewport.FrameRate))
	}

	for i, o := range sc.Observers {
		err = multierr.Append(err, o.validate(fmt.Sprintf("observers[%d]", i)))
	}
	for i, s := range sc.Script {
		err = multierr.Append(err, s.validate(fmt.Sprintf("script[%d]", i)))
	}

	err = multierr.Append(err, sc.Logging.validate())
	return err
}

func (o ObserverConfig) validate(field string) error {
	var err error
	if o.Target == "" {
		err = multierr.Append(err, fmt.Errorf("%s: target is required", field))
	}
	for _, p := range []struct{ name, value string }{
		{"start", o.Start}, {"end", o.End}, {"before", o.Before}, {"after", o.After},
	} {
		if p.value == "" {
			continue
		}
		if _, perr := placement.Parse(p.value); perr != nil {
			err = multierr.Append(err, fmt.Errorf("%s.%s: %w", field, p.name, perr))
		}
	}
	if _, berr := viewport.ParseBoundary(o.Boundary); berr != nil {
		err = multierr.Append(err, fmt.Errorf("%s.boundary: %w", field, berr))
	}
	return err
}

func (s StepConfig) validate(field string) error {
	var err error
	if s.To != nil && s.By != nil {
		err = multierr.Append(err, fmt.Errorf("%s: to and by are mutually exclusive", field))
	}
	if s.Duration < 0 {
		err = multierr.Append(err, fmt.Errorf("%s: duration must not be negative", field))
	}
	if _, eerr := sim.Easing(s.Easing); eerr != nil {
		err = multierr.Append(err, fmt.Errorf("%s: %w", field, eerr))
	}
	return err
}

func (conf *LoggingConfig) validate() error {
	var err error
	for _, l := range []struct {
		name string
		cfg  LoggerConfig
	}{{"console", conf.ConsoleLogger}, {"file", conf.FileLogger}} {
		switch l.cfg.Level {
		case "none", "normal", "debug":
		default:
			err = multierr.Append(err, fmt.Errorf("logging.%s: unknown level %q", l.name, l.cfg.Level))
		}
		switch l.cfg.Mode {
		case "", "append", "overwrite":
		default:
			err = multierr.Append(err, fmt.Errorf("logging.%s: unknown mode %q", l.name, l.cfg.Mode))
		}
	}
	if conf.FileLogger.Level != "none" && conf.FileLogger.Destination == "" {
		err = multierr.Append(err, errors.New("logging.file: destination is required"))
	}
	return err
}

// Source returns the page HTML. URL documents are fetched through l.
func (sc *Scenario) Source(ctx context.Context, l *network.Loader) (string, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case sc.Document.HTML != "":
		return sc.Document.HTML, nil
	case sc.Document.Path != "":
		data, err = os.ReadFile(sc.resolve(sc.Document.Path))
	default:
		data, err = l.Load(ctx, sc.Document.URL)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(data), nil
}

// ScriptsBase returns the directory or URL external scripts are resolved
// against.
func (sc *Scenario) ScriptsBase() string {
	switch {
	case sc.Document.ScriptsDir != "":
		return sc.resolve(sc.Document.ScriptsDir)
	case sc.Document.Path != "":
		return filepath.Dir(sc.resolve(sc.Document.Path))
	case sc.Document.URL != "":
		return sc.Document.URL
	default:
		return sc.dir
	}
}

func (sc *Scenario) resolve(path string) string {
	if filepath.IsAbs(path) || sc.dir == "" {
		return path
	}
	return filepath.Join(sc.dir, path)
}

// SimObservers converts the observers for sim.Simulator.Observe.
func (sc *Scenario) SimObservers() []sim.Observer {
	out := make([]sim.Observer, 0, len(sc.Observers))
	for _, o := range sc.Observers {
		out = append(out, sim.Observer{
			Name:                o.Name,
			Target:              o.Target,
			Root:                o.Root,
			Start:               o.Start,
			End:                 o.End,
			Boundary:            o.Boundary,
			Before:              o.Before,
			After:               o.After,
			ForceInViewBoundary: o.ForceInViewBoundary,
			Progress:            o.Progress,
		})
	}
	return out
}

// SimSteps converts the script for sim.Simulator.Run.
func (sc *Scenario) SimSteps() []sim.Step {
	out := make([]sim.Step, 0, len(sc.Script))
	for _, s := range sc.Script {
		out = append(out, sim.Step{
			Container: s.Container,
			To:        s.To,
			By:        s.By,
			Duration:  s.Duration,
			Easing:    s.Easing,
		})
	}
	return out
}

// Dump returns the scenario as YAML.
func Dump(sc *Scenario) ([]byte, error) {
	data, err := yaml.Marshal(*sc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal scenario to yaml: %w", err)
	}
	return data, nil
}
