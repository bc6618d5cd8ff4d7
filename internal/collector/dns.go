package collector

import (
	"context"
	"log/slog"
	"net"
	"sort"
	"time"

	"github.com/seiran-lab/domainscan/internal/model"
)

// DNSResolver resolves target domains to IPv4 addresses.
//
// Design decision: We use net.Resolver in pure-Go mode rather than a DNS
// library because the pipeline only needs A-record answers; NXDOMAIN,
// empty answers, and timeouts all collapse into "no result" anyway, so a
// richer client would buy nothing here.
type DNSResolver struct {
	resolver *net.Resolver
	timeout  time.Duration
	logger   *slog.Logger
}

// NewDNSResolver creates a resolver with the given per-lookup timeout.
func NewDNSResolver(timeout time.Duration, logger *slog.Logger) *DNSResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &DNSResolver{
		resolver: &net.Resolver{PreferGo: true},
		timeout:  timeout,
		logger:   logger,
	}
}

// Resolve returns the (domain, ip) pairs for the domain's A records,
// sorted by IP for stable output. Not-found, no-record, and timeout are
// all expected-empty outcomes and return an empty slice.
func (r *DNSResolver) Resolve(ctx context.Context, domain string) []model.ResolvedAddress {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ips, err := r.resolver.LookupIP(ctx, "ip4", domain)
	if err != nil {
		// NXDOMAIN and friends land here; none of them are pipeline errors.
		r.logger.Debug("dns lookup empty", "domain", domain, "reason", err)
		return nil
	}

	addrs := make([]string, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, ip.String())
	}
	sort.Strings(addrs)

	results := make([]model.ResolvedAddress, 0, len(addrs))
	for _, ip := range addrs {
		results = append(results, model.ResolvedAddress{Domain: domain, IP: ip})
	}
	return results
}
