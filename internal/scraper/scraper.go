package scraper

import (
	"context"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/seiran-lab/domainscan/internal/credential"
	"github.com/seiran-lab/domainscan/internal/deobfuscate"
	"github.com/seiran-lab/domainscan/internal/model"
)

// settleDelay is how long the renderer waits after navigation for
// single-page apps to finish their initial XHR round trips.
const settleDelay = 2 * time.Second

// Provenance context strings attached to credentials found during
// rendering. The page URL goes in Source, not Context.
const (
	contextRendered = "rendered"
	contextFetchXHR = "fetch/xhr"
)

// Scraper renders pages in a headless browser and extracts findings the
// static crawler cannot see: content produced by JavaScript and JSON
// responses fetched during rendering.
//
// Design decision: one browser allocator is shared across the whole
// execution and each Render call opens a fresh tab. Launching a browser
// per page is too slow, and reusing tabs leaks state between targets.
type Scraper struct {
	allocCtx  context.Context
	cancel    context.CancelFunc
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

// New starts a headless browser allocator. Close must be called to shut
// the browser down.
func New(timeout time.Duration, userAgent string, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Scraper{
		allocCtx:  allocCtx,
		cancel:    cancel,
		timeout:   timeout,
		userAgent: userAgent,
		logger:    logger,
	}
}

// Close shuts down the browser and releases its resources.
func (s *Scraper) Close() {
	s.cancel()
}

// capturedResponse is one same-origin JSON body observed while the page
// rendered.
type capturedResponse struct {
	requestID network.RequestID
	url       string
}

// Render navigates to pageURL, waits for the page to settle, and
// returns emails and credentials extracted from both the final DOM and
// the same-origin JSON responses seen on the network. Returns nil when
// rendering fails; active analysis is best-effort.
func (s *Scraper) Render(ctx context.Context, pageURL string) *model.RenderResult {
	pageURL = ensureTrailingSlash(pageURL)

	taskCtx, cancelTimeout := context.WithTimeout(s.allocCtx, s.timeout)
	defer cancelTimeout()
	taskCtx, cancelTab := chromedp.NewContext(taskCtx)
	defer cancelTab()

	// Propagate the caller's cancellation into the tab context.
	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-taskCtx.Done():
		}
	}()

	var (
		mu       sync.Mutex
		captured []capturedResponse
	)
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok {
			return
		}
		if !jsonResponse(resp.Response.MimeType, resp.Response.URL) {
			return
		}
		if !sameOrigin(resp.Response.URL, pageURL) {
			return
		}
		mu.Lock()
		captured = append(captured, capturedResponse{requestID: resp.RequestID, url: resp.Response.URL})
		mu.Unlock()
	})

	var (
		renderedHTML string
		jsonBodies   []string
	)
	err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(pageURL),
		chromedp.Sleep(settleDelay),
		chromedp.OuterHTML("html", &renderedHTML),
		chromedp.ActionFunc(func(ctx context.Context) error {
			mu.Lock()
			responses := make([]capturedResponse, len(captured))
			copy(responses, captured)
			mu.Unlock()
			for _, resp := range responses {
				body, err := network.GetResponseBody(resp.requestID).Do(ctx)
				if err != nil {
					// Bodies evicted from the browser cache are gone;
					// skip them rather than failing the render.
					s.logger.Debug("response body unavailable", "url", resp.url, "reason", err)
					continue
				}
				jsonBodies = append(jsonBodies, string(body))
			}
			return nil
		}),
	)
	if err != nil {
		s.logger.Debug("render failed", "url", pageURL, "reason", err)
		return nil
	}

	return analyze(pageURL, renderedHTML, jsonBodies)
}

// analyze extracts findings from a rendered document and its captured
// JSON bodies. Split out from Render so extraction is testable without
// a browser.
func analyze(pageURL, renderedHTML string, jsonBodies []string) *model.RenderResult {
	result := &model.RenderResult{URL: pageURL, RawHTML: renderedHTML}

	visibleText := renderedHTML
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(renderedHTML)); err == nil {
		doc.Find("script, style, noscript").Remove()
		visibleText = doc.Text()
	}

	result.EmailsDOM = sortedEmails(deobfuscate.ExtractEmails(visibleText))
	result.CredentialsDOM = credential.ExtractFromText(visibleText, model.TechniqueScrapingDOM, contextRendered)

	joined := strings.Join(jsonBodies, "\n")
	result.EmailsJSON = sortedEmails(deobfuscate.ExtractEmails(joined))
	for _, body := range jsonBodies {
		result.CredentialsJSON = append(result.CredentialsJSON,
			credential.ExtractFromJSON(body, model.TechniqueScrapingJSON, contextFetchXHR)...)
	}

	return result
}

// jsonResponse reports whether a network response looks like JSON,
// either by declared mimetype or by URL extension.
func jsonResponse(mimeType, respURL string) bool {
	if strings.Contains(strings.ToLower(mimeType), "json") {
		return true
	}
	path := strings.ToLower(respURL)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return strings.HasSuffix(path, ".json")
}

// sameOrigin reports whether respURL is served by the page's host or
// one of its subdomains.
func sameOrigin(respURL, pageURL string) bool {
	resp, err := url.Parse(respURL)
	if err != nil {
		return false
	}
	page, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	respHost := strings.ToLower(resp.Hostname())
	pageHost := strings.ToLower(page.Hostname())
	if respHost == "" || pageHost == "" {
		return false
	}
	return respHost == pageHost || strings.HasSuffix(respHost, "."+pageHost)
}

// ensureTrailingSlash appends "/" to bare-path URLs so relative
// resources on the page resolve consistently.
func ensureTrailingSlash(pageURL string) string {
	if strings.HasSuffix(pageURL, "/") {
		return pageURL
	}
	return pageURL + "/"
}

func sortedEmails(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	emails := make([]string, 0, len(set))
	for email := range set {
		emails = append(emails, email)
	}
	sort.Strings(emails)
	return emails
}
