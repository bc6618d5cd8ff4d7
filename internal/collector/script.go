package collector

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/seiran-lab/domainscan/internal/deobfuscate"
	"github.com/seiran-lab/domainscan/internal/model"
)

// endpointRegex matches URL literals inside script bodies. They usually
// point at API endpoints worth recording.
var endpointRegex = regexp.MustCompile(`https?://[^\s"']+`)

// ScriptParser fetches same-domain script files and statically analyzes
// them for email addresses and endpoint URLs.
type ScriptParser struct {
	client    *http.Client
	userAgent string
	maxBody   int64
	logger    *slog.Logger
}

// NewScriptParser creates a parser backed by the given HTTP client.
func NewScriptParser(client *http.Client, userAgent string, logger *slog.Logger) *ScriptParser {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScriptParser{
		client:    client,
		userAgent: userAgent,
		maxBody:   5 << 20,
		logger:    logger,
	}
}

// Parse fetches the script and extracts obfuscated emails and endpoint
// URLs from its body. Scripts hosted outside baseDomain (or its
// subdomains) are skipped, as are fetch failures and non-200 answers;
// all of these report nil.
func (s *ScriptParser) Parse(ctx context.Context, scriptURL, baseDomain string) *model.ScriptResult {
	if external(scriptURL, baseDomain) {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scriptURL, nil)
	if err != nil {
		return nil
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("script fetch failed", "url", scriptURL, "reason", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody))
	if err != nil {
		return nil
	}
	content := string(body)

	emails := make([]string, 0)
	for email := range deobfuscate.ExtractEmails(content) {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	urlSet := make(map[string]struct{})
	for _, endpoint := range endpointRegex.FindAllString(content, -1) {
		urlSet[endpoint] = struct{}{}
	}
	urls := make([]string, 0, len(urlSet))
	for endpoint := range urlSet {
		urls = append(urls, endpoint)
	}
	sort.Strings(urls)

	return &model.ScriptResult{
		ScriptURL: scriptURL,
		Emails:    emails,
		URLs:      urls,
		Raw:       content,
	}
}

// external reports whether the script lives outside the base domain and
// its subdomains. Ports are ignored on both sides.
func external(scriptURL, baseDomain string) bool {
	parsed, err := url.Parse(scriptURL)
	if err != nil {
		return true
	}
	host := strings.ToLower(parsed.Hostname())
	base := strings.ToLower(baseDomain)
	if i := strings.Index(base, ":"); i >= 0 {
		base = base[:i]
	}
	return host != base && !strings.HasSuffix(host, "."+base)
}
