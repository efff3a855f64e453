package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chrisuehlinger/scrollwatch/placement"
	"github.com/chrisuehlinger/scrollwatch/watch"
)

// Observer describes a target to track during a run. Placements use the
// string form accepted by placement.Parse; empty ones take the defaults of
// watch.Track.
type Observer struct {
	Name     string
	Target   string
	Root     string
	Start    string
	End      string
	Boundary string
	Before   string
	After    string
	// ForceInViewBoundary is passed to watch.TrackOptions.
	ForceInViewBoundary bool
	// Progress records every tick inside the active zone, not only state
	// changes.
	Progress bool
}

// Entry is one recorded observation.
type Entry struct {
	Frame    int     `yaml:"frame"`
	Observer string  `yaml:"observer"`
	Kind     string  `yaml:"kind"`
	State    string  `yaml:"state"`
	Old      string  `yaml:"old,omitempty"`
	Distance float64 `yaml:"distance"`
	Total    float64 `yaml:"total"`
	Ratio    float64 `yaml:"ratio"`
}

const (
	// KindState marks a state transition.
	KindState = "state"
	// KindProgress marks a per-tick progress report.
	KindProgress = "progress"
)

// Recorder collects the entries reported by observers.
type Recorder struct {
	sim      *Simulator
	entries  []Entry
	trackers []*watch.Tracker
}

func newRecorder(s *Simulator) *Recorder {
	return &Recorder{sim: s}
}

// Entries returns the entries recorded so far.
func (r *Recorder) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Trackers returns the trackers started by Observe.
func (r *Recorder) Trackers() []*watch.Tracker {
	return r.trackers
}

// Stop stops every tracker.
func (r *Recorder) Stop() {
	for _, t := range r.trackers {
		t.Stop()
	}
}

// Observe starts tracking obs. Its first evaluation runs with the next frame.
func (s *Simulator) Observe(obs Observer) (*watch.Tracker, error) {
	doc := s.window.Document()
	name := obs.Name
	if name == "" {
		name = "#" + obs.Target
	}

	target := doc.GetElementByID(obs.Target)
	if target == nil {
		return nil, fmt.Errorf("observer %s: no element with id %q", name, obs.Target)
	}
	opts := watch.TrackOptions{
		Boundary:            obs.Boundary,
		ForceInViewBoundary: obs.ForceInViewBoundary,
	}
	if obs.Root != "" {
		root := doc.GetElementByID(obs.Root)
		if root == nil {
			return nil, fmt.Errorf("observer %s: no root with id %q", name, obs.Root)
		}
		opts.Root = root
	}
	for _, p := range []struct {
		field string
		value string
		dst   *placement.Placement
	}{
		{"start", obs.Start, &opts.Start},
		{"end", obs.End, &opts.End},
		{"before", obs.Before, &opts.Before},
		{"after", obs.After, &opts.After},
	} {
		if p.value == "" {
			continue
		}
		parsed, err := placement.Parse(p.value)
		if err != nil {
			return nil, fmt.Errorf("observer %s: %s: %w", name, p.field, err)
		}
		*p.dst = parsed
	}

	rec := s.recorder
	opts.Handlers.OnStateChange = func(c watch.StateChange) watch.Signal {
		rec.entries = append(rec.entries, Entry{
			Frame:    s.frames,
			Observer: name,
			Kind:     KindState,
			State:    c.State.String(),
			Old:      c.Old.String(),
		})
		s.log.Info("Observer changed state",
			zap.String("observer", name),
			zap.Stringer("from", c.Old),
			zap.Stringer("to", c.State),
			zap.Int("frame", s.frames))
		return watch.Continue
	}
	if obs.Progress {
		opts.Handlers.Always = func(p watch.Progress) watch.Signal {
			rec.entries = append(rec.entries, Entry{
				Frame:    s.frames,
				Observer: name,
				Kind:     KindProgress,
				State:    p.State.String(),
				Distance: p.Distance,
				Total:    p.Total,
				Ratio:    p.Ratio(),
			})
			return watch.Continue
		}
	}

	t, err := watch.Track(s.registry, target, opts)
	if err != nil {
		return nil, fmt.Errorf("observer %s: %w", name, err)
	}
	rec.trackers = append(rec.trackers, t)
	return t, nil
}
