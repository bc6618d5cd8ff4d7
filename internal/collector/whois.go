package collector

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/seiran-lab/domainscan/internal/model"
)

// ianaWhois is the root WHOIS server used to discover the authoritative
// registry server for a TLD.
const ianaWhois = "whois.iana.org:43"

// WhoisClient performs WHOIS lookups over the plain TCP/43 protocol.
//
// Design decision: WHOIS is a line-oriented text protocol; we speak it
// directly with net.Dialer instead of pulling in a wrapper library. The
// referral step (IANA first, then the registry it names) is the only
// protocol logic involved.
type WhoisClient struct {
	dialer  *net.Dialer
	timeout time.Duration
	logger  *slog.Logger
}

// NewWhoisClient creates a WHOIS client with the given per-query timeout.
func NewWhoisClient(timeout time.Duration, logger *slog.Logger) *WhoisClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &WhoisClient{
		dialer:  &net.Dialer{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

// Lookup queries WHOIS for the domain and parses the interesting fields.
// Returns nil when no data could be obtained; a missing record is an
// expected-empty outcome, not an error.
func (c *WhoisClient) Lookup(ctx context.Context, domain string) *model.WhoisRecord {
	server := c.referralServer(ctx, domain)
	if server == "" {
		server = ianaWhois
	}

	raw, err := c.query(ctx, server, domain)
	if err != nil {
		c.logger.Debug("whois query failed", "domain", domain, "server", server, "reason", err)
		return nil
	}
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	rec := parseWhois(raw)
	rec.Raw = raw
	return rec
}

// referralServer asks IANA which registry serves the domain's TLD.
func (c *WhoisClient) referralServer(ctx context.Context, domain string) string {
	raw, err := c.query(ctx, ianaWhois, domain)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(raw, "\n") {
		key, value, ok := splitWhoisLine(line)
		if ok && strings.EqualFold(key, "refer") {
			return value + ":43"
		}
	}
	return ""
}

// query sends one WHOIS request and reads the full response.
func (c *WhoisClient) query(ctx context.Context, server, domain string) (string, error) {
	conn, err := c.dialer.DialContext(ctx, "tcp", server)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return "", err
	}
	if _, err := conn.Write([]byte(domain + "\r\n")); err != nil {
		return "", err
	}

	raw, err := io.ReadAll(bufio.NewReader(conn))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// parseWhois extracts the registrar, lifecycle dates, name servers,
// status codes, and contact emails from a WHOIS response body. Field
// labels vary by registry; the common spellings are matched
// case-insensitively and repeated fields accumulate.
func parseWhois(raw string) *model.WhoisRecord {
	rec := &model.WhoisRecord{}
	seenNS := make(map[string]struct{})
	seenStatus := make(map[string]struct{})
	seenEmail := make(map[string]struct{})

	for _, line := range strings.Split(raw, "\n") {
		key, value, ok := splitWhoisLine(line)
		if !ok || value == "" {
			continue
		}

		switch strings.ToLower(key) {
		case "registrar", "sponsoring registrar":
			if rec.Registrar == "" {
				rec.Registrar = value
			}
		case "creation date", "created", "registered on":
			if rec.CreationDate == "" {
				rec.CreationDate = value
			}
		case "registry expiry date", "expiration date", "expiry date", "expires":
			if rec.ExpirationDate == "" {
				rec.ExpirationDate = value
			}
		case "updated date", "last updated", "changed":
			if rec.UpdatedDate == "" {
				rec.UpdatedDate = value
			}
		case "name server", "nserver":
			ns := strings.ToLower(value)
			if _, dup := seenNS[ns]; !dup {
				seenNS[ns] = struct{}{}
				rec.NameServers = append(rec.NameServers, ns)
			}
		case "domain status", "status":
			// Status lines often append a URL after the code.
			code := strings.Fields(value)[0]
			if _, dup := seenStatus[code]; !dup {
				seenStatus[code] = struct{}{}
				rec.Status = append(rec.Status, code)
			}
		case "registrar abuse contact email", "abuse contact email", "admin email", "tech email", "registrant email":
			email := strings.ToLower(value)
			if _, dup := seenEmail[email]; !dup {
				seenEmail[email] = struct{}{}
				rec.Emails = append(rec.Emails, email)
			}
		}
	}

	return rec
}

// splitWhoisLine splits a "Key: value" WHOIS line. Comment lines and
// lines without a colon report false.
func splitWhoisLine(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "%") || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ">>>") {
		return "", "", false
	}
	key, value, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}
