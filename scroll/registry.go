package scroll

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chrisuehlinger/scrollwatch/frame"
)

type elementKey struct {
	root   *Root
	target Target
}

// Registry owns the roots and elements of one host. It replaces global
// memoization: whoever creates a Registry decides its lifetime.
//
// A Registry is not safe for concurrent use; drive it from the goroutine
// that delivers the host's events (see frame.Loop).
type Registry struct {
	host     Host
	frames   frame.Scheduler
	log      *zap.Logger
	roots    map[Container]*Root
	elements map[elementKey]*Element
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(log *zap.Logger) Option {
	return func(g *Registry) {
		if log != nil {
			g.log = log
		}
	}
}

// WithScheduler overrides the host's requestAnimationFrame.
func WithScheduler(s frame.Scheduler) Option {
	return func(g *Registry) {
		if s != nil {
			g.frames = s
		}
	}
}

// NewRegistry creates a registry for host.
func NewRegistry(host Host, opts ...Option) *Registry {
	g := &Registry{
		host:     host,
		frames:   frame.SchedulerFunc(host.RequestAnimationFrame),
		log:      zap.NewNop(),
		roots:    make(map[Container]*Root),
		elements: make(map[elementKey]*Element),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Host returns the registry's host.
func (g *Registry) Host() Host {
	return g.host
}

// Logger returns the registry's logger.
func (g *Registry) Logger() *zap.Logger {
	return g.log
}

// Root returns the root for c, creating it on first use. A nil container
// means the window. Roots stay registered while dormant, so c maps to the
// same Root for the lifetime of the registry.
func (g *Registry) Root(c Container) *Root {
	c = g.canonical(c)
	if r, ok := g.roots[c]; ok {
		return r
	}
	r := newRoot(g, c, c == g.host.Window())
	g.roots[c] = r
	g.log.Debug("Scroll root created", zap.Stringer("root", r))
	return r
}

// Element returns the element binding target to the root of c, creating it
// on first use.
func (g *Registry) Element(target Target, c Container) *Element {
	if target == nil {
		panic("scroll: nil target")
	}
	root := g.Root(c)
	key := elementKey{root: root, target: target}
	if e, ok := g.elements[key]; ok {
		return e
	}
	e := newElement(root, target)
	g.elements[key] = e
	root.Watch(e)
	g.log.Debug("Scroll element created", zap.Stringer("root", root), zap.String("target", fmt.Sprintf("%p", target)))
	return e
}

// Len returns the number of live elements.
func (g *Registry) Len() int {
	return len(g.elements)
}

// Roots returns the number of registered roots.
func (g *Registry) Roots() int {
	return len(g.roots)
}

func (g *Registry) canonical(c Container) Container {
	if c == nil {
		return g.host.Window()
	}
	return g.host.Canonical(c)
}

func (g *Registry) forgetElement(e *Element) {
	key := elementKey{root: e.root, target: e.target}
	if g.elements[key] == e {
		delete(g.elements, key)
	}
}
