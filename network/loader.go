package network

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrNoClient is returned when a loader without a client is asked for an
// HTTP resource.
var ErrNoClient = errors.New("no HTTP client")

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger of the loader.
func WithLogger(log *zap.Logger) LoaderOption {
	return func(l *Loader) {
		l.log = log
	}
}

// Loader resolves references against a base, which is either an http(s)
// URL or a local directory, and loads them. HTTP resources are cached for
// the lifetime of the loader.
type Loader struct {
	client *Client
	base   string
	log    *zap.Logger

	mu    sync.Mutex
	cache map[string][]byte
}

// NewLoader creates a loader. client may be nil when only local files and
// data: URLs are loaded.
func NewLoader(client *Client, base string, opts ...LoaderOption) *Loader {
	l := &Loader{
		client: client,
		base:   base,
		log:    zap.NewNop(),
		cache:  make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Base returns the base references are resolved against.
func (l *Loader) Base() string {
	return l.base
}

// IsHTTP reports whether ref is an absolute http or https URL.
func IsHTTP(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Resolve turns ref into an absolute URL, a data: URL or a local path.
func (l *Loader) Resolve(ref string) (string, error) {
	switch {
	case IsDataURL(ref), IsHTTP(ref):
		return ref, nil
	case strings.HasPrefix(ref, "file://"):
		u, err := url.Parse(ref)
		if err != nil {
			return "", err
		}
		return filepath.FromSlash(u.Path), nil
	case IsHTTP(l.base):
		base, err := url.Parse(l.base)
		if err != nil {
			return "", err
		}
		u, err := url.Parse(ref)
		if err != nil {
			return "", err
		}
		return base.ResolveReference(u).String(), nil
	case filepath.IsAbs(ref) || l.base == "":
		return filepath.FromSlash(ref), nil
	default:
		return filepath.Join(l.base, filepath.FromSlash(ref)), nil
	}
}

// Load resolves ref and returns its content.
func (l *Loader) Load(ctx context.Context, ref string) ([]byte, error) {
	target, err := l.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ref, err)
	}

	switch {
	case IsDataURL(target):
		d, err := ParseDataURL(target)
		if err != nil {
			return nil, fmt.Errorf("load data URL: %w", err)
		}
		return d.Data, nil
	case IsHTTP(target):
		return l.fetch(ctx, target)
	default:
		data, err := os.ReadFile(target)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", ref, err)
		}
		l.log.Debug("Loaded file", zap.String("path", target), zap.Int("bytes", len(data)))
		return data, nil
	}
}

func (l *Loader) fetch(ctx context.Context, target string) ([]byte, error) {
	l.mu.Lock()
	data, ok := l.cache[target]
	l.mu.Unlock()
	if ok {
		l.log.Debug("Loaded from cache", zap.String("url", target))
		return data, nil
	}

	if l.client == nil {
		return nil, fmt.Errorf("load %s: %w", target, ErrNoClient)
	}
	resp, err := l.client.Get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", target, err)
	}
	l.log.Debug("Fetched",
		zap.String("url", resp.URL),
		zap.Int("status", resp.StatusCode),
		zap.String("type", resp.ContentType),
		zap.Int("bytes", len(resp.Body)))

	l.mu.Lock()
	l.cache[target] = resp.Body
	l.mu.Unlock()
	return resp.Body, nil
}
