package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/publicsuffix"

	"github.com/seiran-lab/domainscan/internal/collector"
	"github.com/seiran-lab/domainscan/internal/config"
	"github.com/seiran-lab/domainscan/internal/crawler"
	"github.com/seiran-lab/domainscan/internal/database"
	"github.com/seiran-lab/domainscan/internal/log"
	"github.com/seiran-lab/domainscan/internal/model"
	"github.com/seiran-lab/domainscan/internal/pipeline"
	"github.com/seiran-lab/domainscan/internal/report"
	"github.com/seiran-lab/domainscan/internal/scope"
	"github.com/seiran-lab/domainscan/internal/scraper"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [domain]",
		Short: "Run reconnaissance against one or more target domains",
		Long: `Scan performs OSINT reconnaissance against target domains.

It enumerates the target's footprint and extracts exposed data:
- Subdomains (certificate transparency), WHOIS, and DNS resolution
- Email addresses from live pages, crawled HTML, and static JavaScript
- Credential-shaped assignments in page source and scripts
- Historical content via web archive indexes
- Optionally, rendered DOM and captured JSON via a headless browser

Examples:
  # Scan a single domain
  domainscan scan example.com

  # Scan multiple domains concurrently
  domainscan scan example.com example.org example.net

  # Include headless-browser rendering
  domainscan scan --scraping example.com

  # Output a Markdown report to a file
  domainscan scan -m -o report.md example.com

Configuration file (.domainscan) example:
  modules:
    scraping: true
    wayback: false
  limits:
    max_pages: 100
  timeouts:
    http: 30`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Module toggles
	cmd.Flags().Bool("scraping", false,
		"Enable headless-browser rendering (requires Chrome/Chromium)")
	cmd.Flags().Bool("no-subdomains", false, "Skip subdomain enumeration")
	cmd.Flags().Bool("no-whois", false, "Skip WHOIS lookup")
	cmd.Flags().Bool("no-dns", false, "Skip DNS resolution")
	cmd.Flags().Bool("no-wayback", false, "Skip web archive crawling")
	cmd.Flags().Bool("no-js", false, "Skip static JavaScript analysis")

	// Scan behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultHTTPTimeout,
		"HTTP timeout for each request")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per target")
	cmd.Flags().Int("max-dns", config.DefaultMaxDNS,
		"Maximum number of domains to resolve")
	cmd.Flags().Int("max-scripts", config.DefaultMaxScripts,
		"Maximum number of scripts to analyze")
	cmd.Flags().Int("wayback-urls", config.DefaultWaybackURLs,
		"Maximum number of archived URLs to crawl")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent scans")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .domainscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from file and flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return errors.New("--json and --markdown are mutually exclusive")
	}

	// Set up structured logging with credential redaction
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// buildConfig creates a Config from the config file and cobra flags.
// Precedence: defaults, then the file, then explicitly set flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	explicitPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = explicitPath

	// If the user explicitly specified a config file, a missing file is
	// an error. Otherwise a missing file just means defaults.
	if path := config.FindConfigFile(explicitPath); path != "" {
		if err := config.LoadConfigFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else if explicitPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", explicitPath)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	// Always save to the database in the XDG data directory unless the
	// file configured another location.
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	// Normalize positional arguments to registrable domains.
	cfg.Targets = make([]string, 0, len(args))
	for _, arg := range args {
		target, err := normalizeTarget(arg)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, target)
	}

	return cfg, nil
}

// applyFlags overrides config values with flags the user actually set,
// so flag defaults do not clobber values loaded from the file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	boolFlags := []struct {
		name string
		dst  *bool
		// invert is true for --no-X flags, which disable the module.
		invert bool
	}{
		{"scraping", &cfg.Modules.Scraping, false},
		{"no-subdomains", &cfg.Modules.Subdomains, true},
		{"no-whois", &cfg.Modules.Whois, true},
		{"no-dns", &cfg.Modules.DNS, true},
		{"no-wayback", &cfg.Modules.Wayback, true},
		{"no-js", &cfg.Modules.JSParsing, true},
	}
	for _, f := range boolFlags {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetBool(f.name)
		if err != nil {
			return err
		}
		if f.invert {
			v = !v
		}
		*f.dst = v
	}

	intFlags := []struct {
		name string
		dst  *int
	}{
		{"max-pages", &cfg.Limits.MaxPages},
		{"max-dns", &cfg.Limits.MaxDNS},
		{"max-scripts", &cfg.Limits.MaxScripts},
		{"wayback-urls", &cfg.Limits.WaybackURLs},
		{"batch", &cfg.BatchSize},
	}
	for _, f := range intFlags {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetInt(f.name); err != nil {
			return err
		}
	}

	if flags.Changed("timeout") {
		if cfg.Timeouts.HTTP, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return err
	}

	cfg.Verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
	if err != nil {
		return err
	}
	return nil
}

// normalizeTarget reduces a raw argument (bare domain, host, or URL) to
// its registrable domain. "https://mail.example.co.uk/x" and
// "mail.example.co.uk" both normalize to "example.co.uk".
func normalizeTarget(raw string) (string, error) {
	host := raw
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			return "", fmt.Errorf("invalid target %q", raw)
		}
		host = u.Hostname()
	}

	domain, ok := scope.ValidDomain(host)
	if !ok {
		return "", fmt.Errorf("invalid target %q", raw)
	}

	// Reduce to the registrable domain when the public suffix list knows
	// the suffix; otherwise keep the validated host as-is.
	if etld, err := publicsuffix.EffectiveTLDPlusOne(domain); err == nil {
		domain = etld
	}
	return domain, nil
}

// runScan executes the scan for all configured targets.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"targets", cfg.Targets,
		"batch_size", cfg.BatchSize,
		"scraping", cfg.Modules.Scraping,
	)

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	logger.Info("database opened", "path", db.Path())

	// One headless browser allocator is shared by every scan.
	var renderer *scraper.Scraper
	if cfg.Modules.Scraping {
		renderer = scraper.New(cfg.Timeouts.Render, cfg.UserAgent, logger)
		defer renderer.Close()
	}

	factory := newPipelineFactory(cfg, logger, renderer)

	startTime := time.Now()
	bp := pipeline.NewBatchProcessor(factory, db,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	summaries, err := bp.ProcessBatch(ctx, cfg.Targets)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Scan completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	return outputReport(cfg, summaries)
}

// newPipelineFactory builds the per-target pipeline constructor. Each
// pipeline gets fresh steps; the HTTP clients and browser allocator are
// shared.
func newPipelineFactory(cfg *config.Config, logger *slog.Logger, renderer *scraper.Scraper) func() *pipeline.Pipeline {
	// Per-concern clients: the certificate-transparency and archive
	// index endpoints are slower than ordinary page fetches and get
	// their own timeouts.
	pageClient := &http.Client{Timeout: cfg.Timeouts.HTTP}
	crtshClient := &http.Client{Timeout: cfg.Timeouts.Subdomains}
	waybackClient := &http.Client{Timeout: cfg.Timeouts.Wayback}

	subdomains := collector.NewSubdomainCollector(crtshClient, logger)
	whois := collector.NewWhoisClient(cfg.Timeouts.Whois, logger)
	resolver := collector.NewDNSResolver(cfg.Timeouts.DNS, logger)
	passive := collector.NewPassiveEmailCollector(pageClient, cfg.UserAgent, logger)
	archive := collector.NewWaybackCollector(waybackClient, logger)
	scripts := collector.NewScriptParser(pageClient, cfg.UserAgent, logger)

	liveCrawler := crawler.New(pageClient,
		crawler.WithMaxPages(cfg.Limits.MaxPages),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithLogger(logger),
	)
	waybackCrawler := crawler.New(pageClient,
		crawler.WithMaxPages(cfg.Limits.WaybackPages),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithLogger(logger),
	)

	return func() *pipeline.Pipeline {
		p := pipeline.New(pipeline.WithLogger(logger))

		if cfg.Modules.Subdomains {
			p.AddStep(&pipeline.SubdomainStep{Searcher: subdomains, Logger: logger})
		}
		if cfg.Modules.Whois {
			p.AddStep(&pipeline.WhoisStep{Client: whois, Logger: logger})
		}
		if cfg.Modules.DNS {
			p.AddStep(&pipeline.DNSStep{Resolver: resolver, MaxDNS: cfg.Limits.MaxDNS, Logger: logger})
		}
		if cfg.Modules.PassiveEmails {
			p.AddStep(&pipeline.PassiveEmailStep{Scanner: passive, Logger: logger})
		}
		if cfg.Modules.Crawler {
			p.AddStep(&pipeline.CrawlStep{
				LiveCrawler:    liveCrawler,
				WaybackCrawler: waybackCrawler,
				Archive:        archive,
				WaybackEnabled: cfg.Modules.Wayback,
				WaybackLimit:   cfg.Limits.WaybackURLs,
				Logger:         logger,
			})
		}
		if cfg.Modules.JSParsing {
			p.AddStep(&pipeline.JSParseStep{Parser: scripts, MaxScripts: cfg.Limits.MaxScripts, Logger: logger})
		}
		if cfg.Modules.Scraping && renderer != nil {
			p.AddStep(&pipeline.ScrapeStep{Renderer: renderer, Logger: logger})
		}
		p.AddStep(&pipeline.MetricsStep{Logger: logger})

		return p
	}
}

// outputReport writes the summaries in the requested format.
func outputReport(cfg *config.Config, summaries []*model.Summary) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may contain credential material, so the file is only
		// readable by the owner.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	if len(summaries) == 1 {
		_, err := writer.Write(summaries[0])
		return err
	}
	_, err := writer.WriteBatch(summaries)
	return err
}
