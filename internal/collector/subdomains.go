package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// crtshEndpoint is the certificate-transparency search frontend.
const crtshEndpoint = "https://crt.sh/"

// SubdomainCollector enumerates subdomains of a target from certificate
// transparency logs via crt.sh.
type SubdomainCollector struct {
	client   *http.Client
	endpoint string
	logger   *slog.Logger
}

// NewSubdomainCollector creates a collector backed by the given HTTP client.
func NewSubdomainCollector(client *http.Client, logger *slog.Logger) *SubdomainCollector {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SubdomainCollector{client: client, endpoint: crtshEndpoint, logger: logger}
}

// crtshEntry is one row of the crt.sh JSON output. Only the name field
// matters; a single certificate may list several names separated by
// newlines.
type crtshEntry struct {
	NameValue string `json:"name_value"`
}

// Collect queries crt.sh for certificates covering the domain and
// returns the sorted unique set of concrete subdomains. Wildcard names
// are dropped. Returns nil when the service is unreachable or returns
// nothing; enumeration is best-effort.
func (s *SubdomainCollector) Collect(ctx context.Context, domain string) []string {
	query := fmt.Sprintf("%s?q=%s&output=json", s.endpoint, url.QueryEscape("%."+domain))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, query, nil)
	if err != nil {
		return nil
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("crt.sh request failed", "domain", domain, "reason", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Debug("crt.sh returned non-OK status", "domain", domain, "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}

	var entries []crtshEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		s.logger.Debug("crt.sh response is not valid JSON", "domain", domain, "reason", err)
		return nil
	}

	suffix := "." + strings.ToLower(domain)
	seen := make(map[string]struct{})
	for _, entry := range entries {
		for _, name := range strings.Split(entry.NameValue, "\n") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" || strings.HasPrefix(name, "*.") {
				continue
			}
			if name != strings.ToLower(domain) && !strings.HasSuffix(name, suffix) {
				continue
			}
			seen[name] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
