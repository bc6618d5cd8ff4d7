package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values, chosen to finish a typical scan within
// minutes while staying polite to the target.
const (
	// DefaultMaxDNS caps how many discovered domains are resolved.
	// Certificate transparency can return hundreds of subdomains for a
	// large target; resolving all of them adds little beyond the first
	// batch.
	DefaultMaxDNS = 20

	// DefaultMaxPages is the per-crawl page ceiling for the live crawl.
	DefaultMaxPages = 300

	// DefaultMaxScripts caps how many collected scripts are fetched for
	// static analysis.
	DefaultMaxScripts = 300

	// DefaultWaybackURLs caps how many archived URLs are requested from
	// the historical index.
	DefaultWaybackURLs = 50

	// DefaultWaybackPages is the page ceiling for the archived crawl.
	// Archived URLs are pre-collected, so the crawl mostly consumes its
	// seed list rather than discovering links.
	DefaultWaybackPages = 20

	// DefaultBatchSize is the number of concurrent target scans.
	DefaultBatchSize = 3

	// DefaultHTTPTimeout applies to individual page and script fetches.
	DefaultHTTPTimeout = 20 * time.Second

	// DefaultDNSTimeout applies to one domain resolution.
	DefaultDNSTimeout = 5 * time.Second

	// DefaultWhoisTimeout applies to one WHOIS query including the
	// registry referral hop.
	DefaultWhoisTimeout = 15 * time.Second

	// DefaultSubdomainsTimeout applies to the certificate-transparency
	// query. crt.sh is routinely slow under load.
	DefaultSubdomainsTimeout = 25 * time.Second

	// DefaultWaybackTimeout applies to the historical-index query.
	DefaultWaybackTimeout = 60 * time.Second

	// DefaultRenderTimeout applies to one headless-browser page render.
	DefaultRenderTimeout = 15 * time.Second

	// DefaultUserAgent identifies the scanner in HTTP requests.
	// A descriptive User-Agent lets operators recognize scanner traffic.
	DefaultUserAgent = "domainscan/1.0 (+https://github.com/seiran-lab/domainscan)"

	// DefaultMaxBodySize limits how much of a response body is read.
	// 5MB covers any reasonable HTML page.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// AppName is the application name used for XDG directory paths.
	AppName = "domainscan"
)

// Modules selects which reconnaissance techniques run. Every technique
// is optional; disabling one skips it without affecting the others
// beyond the data it would have contributed.
type Modules struct {
	// Subdomains enables certificate-transparency subdomain discovery.
	Subdomains bool `yaml:"subdomains"`

	// Whois enables the WHOIS lookup of the target.
	Whois bool `yaml:"whois"`

	// DNS enables resolution of discovered domains.
	DNS bool `yaml:"dns"`

	// PassiveEmails enables the homepage email scan.
	PassiveEmails bool `yaml:"passive_emails"`

	// Crawler enables the live site crawl.
	Crawler bool `yaml:"crawler"`

	// Wayback enables the archived-URL crawl.
	Wayback bool `yaml:"wayback"`

	// JSParsing enables static analysis of collected scripts.
	JSParsing bool `yaml:"js_parsing"`

	// Scraping enables headless-browser rendering of live pages.
	// Off by default: it needs a Chrome installation and is by far the
	// slowest technique.
	Scraping bool `yaml:"scraping"`
}

// Limits bounds the resource usage of a scan.
type Limits struct {
	// MaxDNS is the maximum number of domains to resolve.
	MaxDNS int `yaml:"max_dns"`

	// MaxPages is the live-crawl page ceiling.
	MaxPages int `yaml:"max_pages"`

	// MaxScripts is the maximum number of scripts to statically analyze.
	MaxScripts int `yaml:"max_scripts"`

	// WaybackURLs is the maximum number of archived URLs to request.
	WaybackURLs int `yaml:"wayback_urls"`

	// WaybackPages is the archived-crawl page ceiling.
	WaybackPages int `yaml:"wayback_pages"`
}

// Timeouts bounds individual network operations. The YAML file
// expresses them in whole seconds; the loader converts.
type Timeouts struct {
	// HTTP applies to page, script, and passive-scan fetches.
	HTTP time.Duration `yaml:"-"`

	// DNS applies to one domain resolution.
	DNS time.Duration `yaml:"-"`

	// Whois applies to one WHOIS query.
	Whois time.Duration `yaml:"-"`

	// Subdomains applies to the certificate-transparency query.
	Subdomains time.Duration `yaml:"-"`

	// Wayback applies to the historical-index query.
	Wayback time.Duration `yaml:"-"`

	// Render applies to one headless-browser page render.
	Render time.Duration `yaml:"-"`
}

// Config holds all configuration for a scan run. It is populated from
// defaults, then an optional YAML file, then CLI flags, and passed
// through the application by dependency injection rather than global
// state.
type Config struct {
	// Targets are the domains to scan. At least one is required.
	Targets []string

	// Modules selects which techniques run.
	Modules Modules `yaml:"modules"`

	// Limits bounds resource usage.
	Limits Limits `yaml:"limits"`

	// Timeouts bounds individual network operations.
	Timeouts Timeouts `yaml:"timeouts"`

	// BatchSize is the number of targets scanned concurrently.
	BatchSize int `yaml:"batch_size"`

	// UserAgent is sent with every HTTP request.
	UserAgent string `yaml:"user_agent"`

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64 `yaml:"max_body_size"`

	// Verbose enables debug-level log output.
	Verbose bool

	// ConfigFilePath is an explicit configuration file path. If empty,
	// the tool searches for .domainscan in the current directory and
	// then in the user's home directory.
	ConfigFilePath string

	// DBDir is the directory holding the SQLite database. Defaults to
	// the XDG data directory when empty.
	DBDir string `yaml:"db_dir"`

	// JSONReport switches the report output to JSON for tool
	// integration. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport switches the report output to GitHub Flavored
	// Markdown instead of the human-readable summary.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string
}

// NewConfig creates a Config with default values. Scraping is the only
// technique disabled by default.
//
// Design decision: a constructor instead of relying on zero values,
// because most defaults are non-zero and the function doubles as
// documentation of what they are.
func NewConfig() *Config {
	return &Config{
		Modules: Modules{
			Subdomains:    true,
			Whois:         true,
			DNS:           true,
			PassiveEmails: true,
			Crawler:       true,
			Wayback:       true,
			JSParsing:     true,
			Scraping:      false,
		},
		Limits: Limits{
			MaxDNS:       DefaultMaxDNS,
			MaxPages:     DefaultMaxPages,
			MaxScripts:   DefaultMaxScripts,
			WaybackURLs:  DefaultWaybackURLs,
			WaybackPages: DefaultWaybackPages,
		},
		Timeouts: Timeouts{
			HTTP:       DefaultHTTPTimeout,
			DNS:        DefaultDNSTimeout,
			Whois:      DefaultWhoisTimeout,
			Subdomains: DefaultSubdomainsTimeout,
			Wayback:    DefaultWaybackTimeout,
			Render:     DefaultRenderTimeout,
		},
		BatchSize:   DefaultBatchSize,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for domainscan.
// On Linux: ~/.local/share/domainscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for domainscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem
// found. It is called once after CLI parsing, before any scanning
// begins, so a bad configuration fails fast with a clear message.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Limits.MaxPages <= 0 || c.Limits.WaybackPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Limits.MaxDNS < 0 || c.Limits.MaxScripts < 0 || c.Limits.WaybackURLs < 0 {
		return ErrInvalidLimit
	}
	if c.Timeouts.HTTP <= 0 || c.Timeouts.DNS <= 0 || c.Timeouts.Whois <= 0 ||
		c.Timeouts.Subdomains <= 0 || c.Timeouts.Wayback <= 0 || c.Timeouts.Render <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}
