package network

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.timeout != 30*time.Second {
		t.Errorf("default timeout = %v, want %v", client.timeout, 30*time.Second)
	}
	if client.maxRedirects != 10 {
		t.Errorf("default maxRedirects = %v, want %v", client.maxRedirects, 10)
	}
	if client.userAgent != DefaultUserAgent {
		t.Errorf("default userAgent = %q", client.userAgent)
	}

	client, err = NewClient(WithTimeout(time.Minute), WithMaxRedirects(2), WithUserAgent("scrollwatch-test/2"), WithMaxBody(10))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if client.timeout != time.Minute || client.maxRedirects != 2 || client.userAgent != "scrollwatch-test/2" || client.maxBody != 10 {
		t.Errorf("options not applied: %+v", client)
	}
}

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			if ua := r.Header.Get("User-Agent"); ua != DefaultUserAgent {
				t.Errorf("User-Agent = %q", ua)
			}
			http.SetCookie(w, &http.Cookie{Name: "seen", Value: "1"})
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<p>hello</p>"))
		case "/moved":
			http.Redirect(w, r, "/page", http.StatusFound)
		case "/loop":
			http.Redirect(w, r, "/loop", http.StatusFound)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, err := NewClient(WithMaxRedirects(3))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	resp, err := client.Get(ctx, server.URL+"/moved")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(resp.Body) != "<p>hello</p>" {
		t.Errorf("Body = %q", resp.Body)
	}
	if resp.URL != server.URL+"/page" {
		t.Errorf("URL = %q, want the redirect target", resp.URL)
	}
	if resp.ContentType != "text/html; charset=utf-8" {
		t.Errorf("ContentType = %q", resp.ContentType)
	}

	u, _ := url.Parse(server.URL)
	if cookies := client.Cookies(u); len(cookies) != 1 || cookies[0].Name != "seen" {
		t.Errorf("Cookies() = %v", cookies)
	}

	_, err = client.Get(ctx, server.URL+"/missing")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Errorf("Get(missing) error = %v, want StatusError 404", err)
	}

	if _, err := client.Get(ctx, server.URL+"/loop"); err == nil {
		t.Error("Get(loop) should stop after the redirect limit")
	}
}

func TestClientMaxBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0123456789abc"))
	}))
	defer server.Close()

	client, _ := NewClient(WithMaxBody(10))
	if _, err := client.Get(context.Background(), server.URL); err == nil {
		t.Error("expected body limit error")
	}
}

func TestParseDataURL(t *testing.T) {
	tests := []struct {
		in        string
		mediaType string
		charset   string
		data      string
		wantErr   bool
	}{
		{in: "data:,Hello%2C%20World", mediaType: "text/plain", charset: "US-ASCII", data: "Hello, World"},
		{in: "data:text/javascript;charset=utf-8,console.log(1)", mediaType: "text/javascript", charset: "utf-8", data: "console.log(1)"},
		{in: "DATA:text/html;base64,PHA+aGk8L3A+", mediaType: "text/html", charset: "US-ASCII", data: "<p>hi</p>"},
		{in: "data:text/plain", wantErr: true},
		{in: "data:;base64,!!!", wantErr: true},
		{in: "http://example.com", wantErr: true},
	}
	for _, tt := range tests {
		d, err := ParseDataURL(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDataURL(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDataURL(%q) error = %v", tt.in, err)
			continue
		}
		if d.MediaType != tt.mediaType || d.Charset != tt.charset || string(d.Data) != tt.data {
			t.Errorf("ParseDataURL(%q) = %q %q %q", tt.in, d.MediaType, d.Charset, d.Data)
		}
	}
}

func TestLoaderResolve(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"/srv/pages", "app.js", filepath.Join("/srv/pages", "app.js")},
		{"/srv/pages", "/abs/app.js", filepath.FromSlash("/abs/app.js")},
		{"", "app.js", "app.js"},
		{"/srv/pages", "file:///tmp/app.js", filepath.FromSlash("/tmp/app.js")},
		{"https://example.com/docs/page.html", "js/app.js", "https://example.com/docs/js/app.js"},
		{"https://example.com/docs/page.html", "/app.js", "https://example.com/app.js"},
		{"/srv/pages", "https://cdn.example.com/x.js", "https://cdn.example.com/x.js"},
		{"/srv/pages", "data:,1", "data:,1"},
	}
	for _, tt := range tests {
		got, err := NewLoader(nil, tt.base).Resolve(tt.ref)
		if err != nil {
			t.Errorf("Resolve(%q, %q) error = %v", tt.base, tt.ref, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}

func TestLoaderLoad(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("remote " + r.URL.Path))
	}))
	defer server.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "local.js"), []byte("local"), 0o644); err != nil {
		t.Fatal(err)
	}

	client, _ := NewClient()
	ctx := context.Background()

	local := NewLoader(client, dir)
	if data, err := local.Load(ctx, "local.js"); err != nil || string(data) != "local" {
		t.Errorf("Load(local.js) = %q, %v", data, err)
	}
	if data, err := local.Load(ctx, "data:,inline"); err != nil || string(data) != "inline" {
		t.Errorf("Load(data) = %q, %v", data, err)
	}
	if _, err := local.Load(ctx, "missing.js"); err == nil {
		t.Error("Load(missing.js) expected error")
	}

	remote := NewLoader(client, server.URL+"/pages/index.html")
	for i := 0; i < 2; i++ {
		data, err := remote.Load(ctx, "app.js")
		if err != nil || string(data) != "remote /pages/app.js" {
			t.Errorf("Load(app.js) = %q, %v", data, err)
		}
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1 (cached)", hits)
	}

	if _, err := NewLoader(nil, dir).Load(ctx, server.URL+"/x.js"); !errors.Is(err, ErrNoClient) {
		t.Errorf("Load without client error = %v, want ErrNoClient", err)
	}
}
