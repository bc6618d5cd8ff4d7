package crawler

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"sync"
	"testing"

	"github.com/seiran-lab/domainscan/internal/model"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fragment stripped", "http://a.com/x#frag", "http://a.com/x"},
		{"trailing slash stripped", "http://a.com/x/", "http://a.com/x"},
		{"both", "http://a.com/x/#frag", "http://a.com/x"},
		{"already normal", "http://a.com/x", "http://a.com/x"},
		{"query preserved", "http://a.com/x?q=1#frag", "http://a.com/x?q=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := NormalizeURL(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
			// Idempotent: normalizing twice yields the same string.
			if again := NormalizeURL(got); again != got {
				t.Errorf("normalization not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestFrontier(t *testing.T) {
	t.Parallel()

	t.Run("fifo order", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier([]string{"http://a.com/1", "http://a.com/2"})
		f.Enqueue("http://a.com/3")

		for _, want := range []string{"http://a.com/1", "http://a.com/2", "http://a.com/3"} {
			got, ok := f.Next()
			if !ok || got != want {
				t.Errorf("Next() = %q, %v; want %q", got, ok, want)
			}
		}
		if _, ok := f.Next(); ok {
			t.Error("expected empty frontier")
		}
	})

	t.Run("normalizes on dequeue", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier([]string{"http://a.com/x/#frag"})
		got, _ := f.Next()
		if got != "http://a.com/x" {
			t.Errorf("Next() = %q, want normalized URL", got)
		}
	})
}

// crawlTestServer builds an httptest server whose handler serves a small
// site rooted at "/", and returns the server plus its base URL host.
func crawlTestServer(t *testing.T, mux *http.ServeMux) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("failed to parse server URL: %v", err)
	}
	return srv, u.Host
}

func TestCrawlerRun(t *testing.T) {
	t.Parallel()

	t.Run("visits each normalized URL at most once", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			// Three spellings of the same page plus a self link.
			fmt.Fprint(w, `<html><body>
				<a href="/about">about</a>
				<a href="/about/">about slash</a>
				<a href="/about#team">about frag</a>
				<a href="/">home</a>
			</body></html>`)
		})
		mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><body>contact root@example.com</body></html>`)
		})

		srv, host := crawlTestServer(t, mux)

		c := New(srv.Client(), WithMaxPages(10))
		pages := c.Run(context.Background(), []string{srv.URL}, hostOnly(host), model.OriginLive)

		seen := make(map[string]int)
		for _, p := range pages {
			seen[p.URL]++
		}
		for u, n := range seen {
			if n > 1 {
				t.Errorf("URL %q visited %d times", u, n)
			}
		}
		if len(pages) != 2 {
			t.Errorf("expected 2 pages (root + about), got %d: %v", len(pages), seen)
		}
	})

	t.Run("respects max pages ceiling", func(t *testing.T) {
		t.Parallel()

		var n int
		var mu sync.Mutex
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			n++
			next := n
			mu.Unlock()
			w.Header().Set("Content-Type", "text/html")
			// Endless chain of generated links.
			fmt.Fprintf(w, `<html><body><a href="/page%d">next</a></body></html>`, next)
		})

		srv, host := crawlTestServer(t, mux)

		c := New(srv.Client(), WithMaxPages(3))
		pages := c.Run(context.Background(), []string{srv.URL}, hostOnly(host), model.OriginLive)

		if len(pages) != 3 {
			t.Errorf("expected exactly 3 pages, got %d", len(pages))
		}
	})

	t.Run("extracts emails from text and raw markup", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><body>
				<p>visible@example.com</p>
				<!-- hidden@example.com only in markup -->
				<p>obf [at] example [dot] com</p>
			</body></html>`)
		})

		srv, host := crawlTestServer(t, mux)

		c := New(srv.Client())
		pages := c.Run(context.Background(), []string{srv.URL}, hostOnly(host), model.OriginLive)
		if len(pages) != 1 {
			t.Fatalf("expected 1 page, got %d", len(pages))
		}

		for _, want := range []string{"visible@example.com", "hidden@example.com", "obf@example.com"} {
			if !slices.Contains(pages[0].Emails, want) {
				t.Errorf("expected %q in page emails %v", want, pages[0].Emails)
			}
		}
	})

	t.Run("skips out-of-scope links and collects scripts without crawling them", func(t *testing.T) {
		t.Parallel()

		var scriptFetched bool
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><body>
				<a href="http://evil.example.net/">external</a>
				<script src="/app.js"></script>
			</body></html>`)
		})
		mux.HandleFunc("/app.js", func(w http.ResponseWriter, r *http.Request) {
			scriptFetched = true
		})

		srv, host := crawlTestServer(t, mux)

		c := New(srv.Client())
		pages := c.Run(context.Background(), []string{srv.URL}, hostOnly(host), model.OriginLive)
		if len(pages) != 1 {
			t.Fatalf("expected 1 page, got %d", len(pages))
		}

		if len(pages[0].Links) != 0 {
			t.Errorf("expected external link excluded, got %v", pages[0].Links)
		}
		if len(pages[0].Scripts) != 1 {
			t.Fatalf("expected 1 script, got %v", pages[0].Scripts)
		}
		if scriptFetched {
			t.Error("scripts must be collected, never fetched by the crawler")
		}
	})

	t.Run("mailto-style queued URL yields synthetic page without fetch", func(t *testing.T) {
		t.Parallel()

		c := New(&http.Client{})
		pages := c.Run(context.Background(),
			[]string{"mailto:info@example.com"}, "example.com", model.OriginLive)

		if len(pages) != 1 {
			t.Fatalf("expected 1 synthetic page, got %d", len(pages))
		}
		p := pages[0]
		if !slices.Contains(p.Emails, "info@example.com") {
			t.Errorf("expected embedded email extracted, got %v", p.Emails)
		}
		if p.RawHTML != "" || len(p.Links) != 0 || len(p.Scripts) != 0 {
			t.Error("synthetic page must have empty links, scripts, and raw HTML")
		}
	})

	t.Run("at-URL without email yields nothing", func(t *testing.T) {
		t.Parallel()

		c := New(&http.Client{})
		pages := c.Run(context.Background(),
			[]string{"http://user@/broken"}, "example.com", model.OriginLive)
		if len(pages) != 0 {
			t.Errorf("expected no pages, got %v", pages)
		}
	})

	t.Run("non-html content type is skipped and left unvisited", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, "%PDF-1.4")
		})

		srv, host := crawlTestServer(t, mux)

		c := New(srv.Client())
		pages := c.Run(context.Background(), []string{srv.URL}, hostOnly(host), model.OriginLive)
		if len(pages) != 0 {
			t.Errorf("expected no pages for non-HTML response, got %d", len(pages))
		}
	})

	t.Run("fetch error is skipped without aborting the run", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><body>ok@example.com</body></html>`)
		})

		srv, host := crawlTestServer(t, mux)

		// First seed points at a closed port; second is healthy.
		c := New(srv.Client(), WithMaxPages(5))
		pages := c.Run(context.Background(),
			[]string{"http://127.0.0.1:1/dead", srv.URL}, hostOnly(host), model.OriginLive)

		if len(pages) != 1 {
			t.Fatalf("expected the healthy seed to be crawled, got %d pages", len(pages))
		}
	})

	t.Run("origin tag is applied", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><body>hi</body></html>`)
		})

		srv, host := crawlTestServer(t, mux)

		c := New(srv.Client())
		pages := c.Run(context.Background(), []string{srv.URL}, hostOnly(host), model.OriginWayback)
		if len(pages) != 1 || pages[0].Origin != model.OriginWayback {
			t.Errorf("expected wayback origin tag, got %+v", pages)
		}
	})
}

// hostOnly strips the port from an httptest host so it can act as the
// crawl's allowed domain.
func hostOnly(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
