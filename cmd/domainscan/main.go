// Package main provides the entry point for the DomainScan CLI.
//
// DomainScan is an OSINT reconnaissance tool for authorized security
// assessments. It enumerates a target domain's footprint and extracts
// exposed email addresses and credential material from public content.
//
// Usage:
//
//	domainscan scan <domain>
//	domainscan scan --scraping <domain>
//
// See --help for all available options.
package main

// main is the entry point for DomainScan.
func main() {
	Execute()
}
