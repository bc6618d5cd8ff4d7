package collector

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
)

// emailRegex matches plain, unobfuscated addresses. The passive scan
// deliberately skips deobfuscation: it is a quick surface check against
// the homepage variants, and the crawler covers the deep extraction.
var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// EmailHit is one address found by the passive scan, with the page it
// was found on.
type EmailHit struct {
	Value   string
	Context string
}

// PassiveEmailCollector scans the homepage variants of a target for
// plainly visible email addresses without crawling.
type PassiveEmailCollector struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// NewPassiveEmailCollector creates a collector backed by the given HTTP
// client.
func NewPassiveEmailCollector(client *http.Client, userAgent string, logger *slog.Logger) *PassiveEmailCollector {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PassiveEmailCollector{client: client, userAgent: userAgent, logger: logger}
}

// Collect fetches the four scheme/www homepage variants of the target
// and returns every address match with the URL it came from. Variants
// that fail or answer non-200 are skipped. Matches are reported as-is,
// duplicates included; attribution and dedup happen downstream.
func (p *PassiveEmailCollector) Collect(ctx context.Context, target string) []EmailHit {
	urls := []string{
		"https://" + target,
		"https://www." + target,
		"http://" + target,
		"http://www." + target,
	}

	var hits []EmailHit
	for _, pageURL := range urls {
		body, ok := p.fetch(ctx, pageURL)
		if !ok {
			continue
		}
		for _, email := range emailRegex.FindAllString(body, -1) {
			hits = append(hits, EmailHit{Value: strings.ToLower(email), Context: pageURL})
		}
	}
	return hits
}

func (p *PassiveEmailCollector) fetch(ctx context.Context, pageURL string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", false
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("passive email fetch failed", "url", pageURL, "reason", err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false
	}
	return string(body), true
}
