// Package collector implements the raw-data fetchers feeding the
// reconnaissance pipeline: DNS resolution, WHOIS lookup,
// certificate-transparency subdomain search, historical-URL listing,
// passive email scanning, and static script analysis.
//
// # Error semantics
//
// Collectors distinguish "expected empty" from failure. A domain with no
// A record, a registry with no WHOIS data, or a target with no issued
// certificates are normal outcomes and come back as empty results, not
// errors. Transient fetch failures are logged and also produce empty
// results; the pipeline treats both identically and moves on. No
// collector retries anything.
package collector
