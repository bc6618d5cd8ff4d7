package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// cdxEndpoint is the Wayback Machine CDX API.
const cdxEndpoint = "https://web.archive.org/cdx/search/cdx"

// staticExtensions are asset suffixes excluded from archived URL
// results; they never contain crawlable HTML.
var staticExtensions = []string{
	".css", ".js", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico",
	".woff", ".woff2", ".ttf", ".eot", ".zip", ".rar", ".7z",
}

// WaybackCollector lists historical URLs for a domain from the Wayback
// Machine's CDX index.
type WaybackCollector struct {
	client   *http.Client
	endpoint string
	logger   *slog.Logger
}

// NewWaybackCollector creates a collector backed by the given HTTP client.
func NewWaybackCollector(client *http.Client, logger *slog.Logger) *WaybackCollector {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WaybackCollector{client: client, endpoint: cdxEndpoint, logger: logger}
}

// Collect returns up to limit archived URLs under the domain, filtered
// to successful captures and deduplicated per URL key by the index
// itself. Static assets and known rewriter artifacts are dropped.
// Returns nil when the index is unreachable or empty.
func (w *WaybackCollector) Collect(ctx context.Context, domain string, limit int) []string {
	params := url.Values{}
	params.Set("url", "*."+domain+"/*")
	params.Set("output", "json")
	params.Set("fl", "original")
	params.Set("collapse", "urlkey")
	params.Set("filter", "statuscode:200")
	params.Set("limit", fmt.Sprintf("%d", limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil
	}

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Debug("wayback CDX request failed", "domain", domain, "reason", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		w.logger.Debug("wayback CDX returned non-OK status", "domain", domain, "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	// The CDX JSON output is an array of rows; the first row is the
	// field-name header.
	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil {
		w.logger.Debug("wayback CDX response is not valid JSON", "domain", domain, "reason", err)
		return nil
	}
	if len(rows) < 2 {
		return nil
	}

	var urls []string
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		raw := row[0]
		if usableArchivedURL(raw) {
			urls = append(urls, raw)
		}
	}
	return urls
}

// usableArchivedURL reports whether an archived URL is worth crawling:
// an http(s) page that is not a static asset or a CDN rewriter artifact.
func usableArchivedURL(raw string) bool {
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	if strings.Contains(lower, ",a.media") || strings.Contains(lower, ".pagespeed.") {
		return false
	}
	path := lower
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, ext := range staticExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}
	return true
}
