package collector

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestParseWhois(t *testing.T) {
	t.Parallel()

	raw := strings.Join([]string{
		"% Terms of use apply",
		"Domain Name: EXAMPLE.COM",
		"Registrar: Example Registrar, Inc.",
		"Creation Date: 1995-08-14T04:00:00Z",
		"Registry Expiry Date: 2026-08-13T04:00:00Z",
		"Updated Date: 2025-08-14T07:01:44Z",
		"Name Server: A.IANA-SERVERS.NET",
		"Name Server: B.IANA-SERVERS.NET",
		"Name Server: a.iana-servers.net",
		"Domain Status: clientDeleteProhibited https://icann.org/epp#clientDeleteProhibited",
		"Domain Status: clientTransferProhibited https://icann.org/epp#clientTransferProhibited",
		"Registrar Abuse Contact Email: Abuse@registrar.example",
		">>> Last update of whois database: 2025-08-29 <<<",
	}, "\n")

	rec := parseWhois(raw)

	if rec.Registrar != "Example Registrar, Inc." {
		t.Errorf("Registrar = %q, want %q", rec.Registrar, "Example Registrar, Inc.")
	}
	if rec.CreationDate != "1995-08-14T04:00:00Z" {
		t.Errorf("CreationDate = %q", rec.CreationDate)
	}
	if rec.ExpirationDate != "2026-08-13T04:00:00Z" {
		t.Errorf("ExpirationDate = %q", rec.ExpirationDate)
	}
	if rec.UpdatedDate != "2025-08-14T07:01:44Z" {
		t.Errorf("UpdatedDate = %q", rec.UpdatedDate)
	}
	if len(rec.NameServers) != 2 {
		t.Fatalf("NameServers = %v, want 2 unique entries", rec.NameServers)
	}
	if rec.NameServers[0] != "a.iana-servers.net" {
		t.Errorf("NameServers[0] = %q", rec.NameServers[0])
	}
	if len(rec.Status) != 2 || rec.Status[0] != "clientDeleteProhibited" {
		t.Errorf("Status = %v, want bare codes without trailing URLs", rec.Status)
	}
	if len(rec.Emails) != 1 || rec.Emails[0] != "abuse@registrar.example" {
		t.Errorf("Emails = %v, want lowercased abuse contact", rec.Emails)
	}
}

func TestSplitWhoisLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line      string
		wantKey   string
		wantValue string
		wantOK    bool
	}{
		{"Registrar: Example, Inc.", "Registrar", "Example, Inc.", true},
		{"  refer:        whois.verisign-grs.com", "refer", "whois.verisign-grs.com", true},
		{"% comment line", "", "", false},
		{"# comment line", "", "", false},
		{">>> footer <<<", "", "", false},
		{"no colon here", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		key, value, ok := splitWhoisLine(tt.line)
		if key != tt.wantKey || value != tt.wantValue || ok != tt.wantOK {
			t.Errorf("splitWhoisLine(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.line, key, value, ok, tt.wantKey, tt.wantValue, tt.wantOK)
		}
	}
}

func TestSubdomainCollector_Collect(t *testing.T) {
	t.Parallel()

	body := `[
		{"name_value": "www.example.com\nexample.com"},
		{"name_value": "*.example.com"},
		{"name_value": "MAIL.EXAMPLE.COM"},
		{"name_value": "www.example.com"},
		{"name_value": "example.com.evil.com"},
		{"name_value": "notexample.com"}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "%.example.com" {
			t.Errorf("q = %q, want %%.example.com", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewSubdomainCollector(srv.Client(), discardLogger())
	c.endpoint = srv.URL + "/"

	got := c.Collect(context.Background(), "example.com")
	want := []string{"example.com", "mail.example.com", "www.example.com"}
	if len(got) != len(want) {
		t.Fatalf("Collect() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Collect()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSubdomainCollector_CollectErrors(t *testing.T) {
	t.Parallel()

	t.Run("non-200 status", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := NewSubdomainCollector(srv.Client(), discardLogger())
		c.endpoint = srv.URL + "/"
		if got := c.Collect(context.Background(), "example.com"); got != nil {
			t.Errorf("Collect() = %v, want nil", got)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>rate limited</html>"))
		}))
		defer srv.Close()

		c := NewSubdomainCollector(srv.Client(), discardLogger())
		c.endpoint = srv.URL + "/"
		if got := c.Collect(context.Background(), "example.com"); got != nil {
			t.Errorf("Collect() = %v, want nil", got)
		}
	})
}

func TestWaybackCollector_Collect(t *testing.T) {
	t.Parallel()

	body := `[
		["original"],
		["https://example.com/contact"],
		["https://example.com/style.css"],
		["https://example.com/app.js"],
		["https://example.com/logo.png?v=2"],
		["https://example.com/x.pagespeed.ic.abc"],
		["https://example.com/img,a.media"],
		["ftp://example.com/archive"],
		["http://example.com/about/"]
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("url"); got != "*.example.com/*" {
			t.Errorf("url = %q, want *.example.com/*", got)
		}
		if got := q.Get("filter"); got != "statuscode:200" {
			t.Errorf("filter = %q, want statuscode:200", got)
		}
		if got := q.Get("collapse"); got != "urlkey" {
			t.Errorf("collapse = %q, want urlkey", got)
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewWaybackCollector(srv.Client(), discardLogger())
	c.endpoint = srv.URL

	got := c.Collect(context.Background(), "example.com", 50)
	want := []string{"https://example.com/contact", "http://example.com/about/"}
	if len(got) != len(want) {
		t.Fatalf("Collect() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Collect()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestUsableArchivedURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want bool
	}{
		{"https://example.com/page", true},
		{"http://example.com/page.html", true},
		{"https://example.com/style.css", false},
		{"https://example.com/file.ZIP", false},
		{"https://example.com/script.js?cb=1", false},
		{"https://example.com/assets/x.pagespeed.ce.map", false},
		{"https://example.com/photo,a.media", false},
		{"ftp://example.com/page", false},
		{"mailto:a@example.com", false},
	}
	for _, tt := range tests {
		if got := usableArchivedURL(tt.raw); got != tt.want {
			t.Errorf("usableArchivedURL(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestPassiveEmailCollector_Collect(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<p>Contact Sales@Example.com or support@example.com</p>`))
	}))
	defer srv.Close()

	target := strings.TrimPrefix(srv.URL, "http://")
	c := NewPassiveEmailCollector(srv.Client(), "domainscan/1.0", discardLogger())

	hits := c.Collect(context.Background(), target)
	if len(hits) != 2 {
		t.Fatalf("Collect() returned %d hits, want 2 (only the plain-http variant reachable)", len(hits))
	}
	if hits[0].Value != "sales@example.com" {
		t.Errorf("hits[0].Value = %q, want lowercased address", hits[0].Value)
	}
	wantContext := "http://" + target
	if hits[0].Context != wantContext {
		t.Errorf("hits[0].Context = %q, want %q", hits[0].Context, wantContext)
	}
}

func TestPassiveEmailCollector_SkipsNon200(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("missing@example.com"))
	}))
	defer srv.Close()

	target := strings.TrimPrefix(srv.URL, "http://")
	c := NewPassiveEmailCollector(srv.Client(), "", discardLogger())
	if hits := c.Collect(context.Background(), target); len(hits) != 0 {
		t.Errorf("Collect() = %v, want no hits from non-200 pages", hits)
	}
}

func TestScriptParser_Parse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		w.Write([]byte(`
			const support = "ops" + "@" + "example.com";
			fetch("https://api.example.com/v1/users");
			fetch("https://api.example.com/v1/users");
		`))
	}))
	defer srv.Close()

	host, _ := hostPort(t, srv.URL)
	p := NewScriptParser(srv.Client(), "domainscan/1.0", discardLogger())

	res := p.Parse(context.Background(), srv.URL+"/app.js", host)
	if res == nil {
		t.Fatal("Parse() = nil, want result for same-domain script")
	}
	if len(res.Emails) != 1 || res.Emails[0] != "ops@example.com" {
		t.Errorf("Emails = %v, want concat-deobfuscated address", res.Emails)
	}
	if len(res.URLs) != 1 || res.URLs[0] != "https://api.example.com/v1/users" {
		t.Errorf("URLs = %v, want single deduplicated endpoint", res.URLs)
	}
	if res.Raw == "" {
		t.Error("Raw is empty, want script body retained")
	}
}

func TestScriptParser_SkipsExternal(t *testing.T) {
	t.Parallel()

	p := NewScriptParser(http.DefaultClient, "", discardLogger())
	if res := p.Parse(context.Background(), "https://cdn.other.com/lib.js", "example.com"); res != nil {
		t.Errorf("Parse() = %v, want nil for external script", res)
	}
}

func TestExternal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scriptURL  string
		baseDomain string
		want       bool
	}{
		{"https://example.com/app.js", "example.com", false},
		{"https://static.example.com/app.js", "example.com", false},
		{"https://example.com:8443/app.js", "example.com", false},
		{"https://static.example.com/app.js", "example.com:8080", false},
		{"https://cdn.jsdelivr.net/lib.js", "example.com", true},
		{"https://example.com.evil.com/app.js", "example.com", true},
		{"://bad", "example.com", true},
	}
	for _, tt := range tests {
		if got := external(tt.scriptURL, tt.baseDomain); got != tt.want {
			t.Errorf("external(%q, %q) = %v, want %v", tt.scriptURL, tt.baseDomain, got, tt.want)
		}
	}
}

func TestDNSResolver_Resolve(t *testing.T) {
	t.Parallel()

	r := NewDNSResolver(2*time.Second, discardLogger())

	t.Run("localhost resolves", func(t *testing.T) {
		t.Parallel()
		addrs := r.Resolve(context.Background(), "localhost")
		if len(addrs) == 0 {
			t.Skip("localhost did not resolve in this environment")
		}
		for _, addr := range addrs {
			if addr.Domain != "localhost" {
				t.Errorf("Domain = %q, want localhost", addr.Domain)
			}
		}
	})

	t.Run("cancelled context yields empty", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if addrs := r.Resolve(ctx, "example.com"); len(addrs) != 0 {
			t.Errorf("Resolve() = %v, want empty on cancelled context", addrs)
		}
	})
}

// hostPort splits a httptest server URL into its host and port.
func hostPort(t *testing.T, rawURL string) (host, port string) {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse %q: %v", rawURL, err)
	}
	return u.Host, u.Port()
}
