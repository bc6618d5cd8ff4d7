package crawler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seiran-lab/domainscan/internal/deobfuscate"
	"github.com/seiran-lab/domainscan/internal/model"
	"github.com/seiran-lab/domainscan/internal/scope"
)

// Crawler performs a bounded breadth-first traversal over one Frontier,
// producing a Page record per visited URL. It never re-fetches a
// normalized URL and stops when the queue drains or the visited count
// reaches maxPages.
//
// The crawler is single-pass and sequential: one URL is fetched and fully
// processed before the next is dequeued. It carries no politeness policy
// and no robots.txt handling; callers bound it with maxPages and the
// client timeout instead.
type Crawler struct {
	// client performs the HTTP fetches. Its Timeout is the per-request
	// timeout; a timed-out fetch is treated like any other fetch failure.
	client *http.Client

	// maxPages limits the number of visited URLs per run.
	maxPages int

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize caps how much of a response body is read.
	maxBodySize int64

	// logger for per-URL skip/failure messages.
	logger *slog.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithMaxPages sets the visited-URL ceiling for each run.
func WithMaxPages(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Crawler) {
		c.userAgent = ua
	}
}

// WithMaxBodySize caps the response body bytes read per page.
func WithMaxBodySize(size int64) Option {
	return func(c *Crawler) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// New creates a Crawler using the given HTTP client.
//
// Design decision: We require an external client rather than building one
// because the per-call timeout is owned by the configuration layer and
// tests inject httptest clients.
func New(client *http.Client, opts ...Option) *Crawler {
	c := &Crawler{
		client:      client,
		maxPages:    30,
		userAgent:   "domainscan/1.0",
		maxBodySize: 5 * 1024 * 1024,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run crawls from the seed URLs and returns a Page record per visited
// URL, tagged with the given origin. allowedDomain scopes link-following:
// when empty, only hosts equal to the first seed's host (plus the archive
// exception) are followed, which is how archived crawls accept
// cross-domain historical URLs seeded directly into the queue.
//
// Fetch failures are logged and skipped; they do not mark the URL visited
// and never abort the run.
func (c *Crawler) Run(ctx context.Context, seeds []string, allowedDomain, origin string) []model.Page {
	if len(seeds) == 0 {
		return nil
	}

	classifier := scope.NewClassifier(allowedDomain, seeds[0])
	frontier := NewFrontier(seeds)
	pages := make([]model.Page, 0)

	for frontier.VisitedCount() < c.maxPages {
		select {
		case <-ctx.Done():
			return pages
		default:
		}

		current, ok := frontier.Next()
		if !ok {
			break
		}
		if frontier.Visited(current) {
			continue
		}

		// URLs containing "@" (mailto hrefs, broken links) are never
		// fetched, but the URL string itself may embed an address.
		if strings.Contains(current, "@") {
			frontier.MarkVisited(current)
			if emails := setToSorted(deobfuscate.ExtractEmails(current)); len(emails) > 0 {
				pages = append(pages, model.Page{
					URL:    current,
					Emails: emails,
					Origin: origin,
				})
			}
			continue
		}

		page, links, visited := c.fetchPage(ctx, current, classifier)
		if !visited {
			continue
		}
		frontier.MarkVisited(current)

		page.Origin = origin
		pages = append(pages, *page)

		for _, link := range links {
			if !frontier.Visited(link) {
				frontier.Enqueue(link)
			}
		}
	}

	return pages
}

// fetchPage fetches one URL and extracts emails, in-scope links, and
// in-scope scripts. The third return value reports whether the URL counts
// as visited: fetch errors and non-HTML responses leave it unvisited.
func (c *Crawler) fetchPage(ctx context.Context, pageURL string, classifier *scope.Classifier) (*model.Page, []string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		c.logger.Debug("invalid crawl URL", "url", pageURL, "error", err)
		return nil, nil, false
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("fetch failed", "url", pageURL, "error", err)
		return nil, nil, false
	}
	defer resp.Body.Close()

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return nil, nil, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		c.logger.Debug("body read failed", "url", pageURL, "error", err)
		return nil, nil, false
	}
	raw := string(body)

	page := &model.Page{URL: pageURL, RawHTML: raw}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		// Unparseable markup still counts as a visited HTML page; emails
		// are extracted from the raw bytes alone.
		page.Emails = setToSorted(deobfuscate.ExtractEmails(raw))
		return page, nil, true
	}

	// Emails from the rendered text and the raw markup, unioned: either
	// view can hide addresses the other cannot see.
	emails := deobfuscate.ExtractEmails(doc.Text())
	for e := range deobfuscate.ExtractEmails(raw) {
		emails[e] = struct{}{}
	}
	page.Emails = setToSorted(emails)

	base, err := url.Parse(pageURL)
	if err != nil {
		return page, nil, true
	}

	linkSet := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		// Anchors containing "@" are mailto or broken hrefs: excluded from
		// crawling, though their text was already email-scanned above.
		if href == "" || strings.Contains(href, "@") {
			return
		}
		full, ok := resolve(base, href)
		if !ok {
			return
		}
		if classifier.IsInternal(full) {
			linkSet[full] = struct{}{}
		}
	})
	page.Links = setToSorted(linkSet)

	scriptSet := make(map[string]struct{})
	doc.Find("script[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		full, ok := resolve(base, src)
		if !ok {
			return
		}
		// Scripts are collected for later static analysis, not enqueued.
		if classifier.IsInternal(full) {
			scriptSet[full] = struct{}{}
		}
	})
	page.Scripts = setToSorted(scriptSet)

	return page, page.Links, true
}

// resolve joins href against the page base URL and normalizes the result.
func resolve(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	return NormalizeURL(base.ResolveReference(ref).String()), true
}

// setToSorted converts a set to a sorted slice. Sorting keeps page
// records deterministic for identical input.
func setToSorted(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
