package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"github.com/seiran-lab/domainscan/internal/collector"
	"github.com/seiran-lab/domainscan/internal/credential"
	"github.com/seiran-lab/domainscan/internal/deobfuscate"
	"github.com/seiran-lab/domainscan/internal/model"
	"github.com/seiran-lab/domainscan/internal/scope"
)

// Collaborator interfaces consumed by the steps. The concrete types
// live in internal/collector, internal/crawler, and internal/scraper;
// tests substitute fakes.
type (
	// SubdomainSearcher enumerates subdomains of a target.
	SubdomainSearcher interface {
		Collect(ctx context.Context, domain string) []string
	}

	// WhoisLookuper queries registration data for a domain.
	WhoisLookuper interface {
		Lookup(ctx context.Context, domain string) *model.WhoisRecord
	}

	// DomainResolver resolves a domain to its addresses.
	DomainResolver interface {
		Resolve(ctx context.Context, domain string) []model.ResolvedAddress
	}

	// PassiveEmailScanner scans homepage variants for plain addresses.
	PassiveEmailScanner interface {
		Collect(ctx context.Context, target string) []collector.EmailHit
	}

	// PageCrawler performs one bounded crawl from the given seeds.
	PageCrawler interface {
		Run(ctx context.Context, seeds []string, allowedDomain, origin string) []model.Page
	}

	// ArchiveLister lists historical URLs for a domain.
	ArchiveLister interface {
		Collect(ctx context.Context, domain string, limit int) []string
	}

	// ScriptAnalyzer fetches and statically analyzes one script.
	ScriptAnalyzer interface {
		Parse(ctx context.Context, scriptURL, baseDomain string) *model.ScriptResult
	}

	// PageRenderer renders one page in a headless browser.
	PageRenderer interface {
		Render(ctx context.Context, pageURL string) *model.RenderResult
	}
)

// SubdomainStep discovers subdomains from certificate transparency and
// adds them to the execution's domain set.
type SubdomainStep struct {
	Searcher SubdomainSearcher
	Logger   *slog.Logger
}

// Name returns the step name.
func (s *SubdomainStep) Name() string { return "subdomains" }

// Do collects subdomains, validates each candidate, and persists the
// newly discovered domains. The seed target is already in the set.
func (s *SubdomainStep) Do(ctx context.Context, state *State) error {
	names := s.Searcher.Collect(ctx, state.Execution.Target)
	s.Logger.Debug("subdomain discovery finished", "target", state.Execution.Target, "candidates", len(names))

	for _, name := range names {
		domain, ok := scope.ValidDomain(name)
		if !ok {
			continue
		}
		if !state.AddDomain(domain) {
			continue
		}
		if err := state.Store.InsertDomain(ctx, state.Execution.ID, domain,
			model.TechniqueSubdomains, model.DomainStatusNotEvaluated); err != nil {
			return err
		}
	}
	return nil
}

// WhoisStep looks up registration data for the target.
type WhoisStep struct {
	Client WhoisLookuper
	Logger *slog.Logger
}

// Name returns the step name.
func (s *WhoisStep) Name() string { return "whois" }

// Do performs the lookup and persists the record when one was obtained.
func (s *WhoisStep) Do(ctx context.Context, state *State) error {
	rec := s.Client.Lookup(ctx, state.Execution.Target)
	if rec == nil {
		s.Logger.Debug("whois returned no data", "target", state.Execution.Target)
		return nil
	}
	return state.Store.InsertWhois(ctx, state.Execution.ID, state.Execution.Target, rec)
}

// DNSStep resolves the collected domains, up to a configured cap.
type DNSStep struct {
	Resolver DomainResolver
	MaxDNS   int
	Logger   *slog.Logger
}

// Name returns the step name.
func (s *DNSStep) Name() string { return "dns" }

// Do resolves domains in collection order, seed first, stopping at the
// cap. Each domain's status is updated to resolvable or not, and every
// answer is persisted.
func (s *DNSStep) Do(ctx context.Context, state *State) error {
	limit := s.MaxDNS
	if limit > len(state.Domains) {
		limit = len(state.Domains)
	}

	for _, raw := range state.Domains[:limit] {
		domain, ok := scope.ValidDomain(raw)
		if !ok {
			continue
		}

		addrs := s.Resolver.Resolve(ctx, domain)
		if len(addrs) == 0 {
			if err := state.Store.UpdateDomainStatus(ctx, state.Execution.ID, domain,
				model.DomainStatusNotResolvable); err != nil {
				return err
			}
			continue
		}

		if err := state.Store.UpdateDomainStatus(ctx, state.Execution.ID, domain,
			model.DomainStatusResolvable); err != nil {
			return err
		}
		for _, addr := range addrs {
			if err := state.Store.InsertResolvedDomain(ctx, state.Execution.ID, addr,
				model.TechniqueDNS); err != nil {
				return err
			}
		}
	}
	return nil
}

// PassiveEmailStep scans the target's homepage variants for plainly
// visible addresses without crawling.
type PassiveEmailStep struct {
	Scanner PassiveEmailScanner
	Logger  *slog.Logger
}

// Name returns the step name.
func (s *PassiveEmailStep) Name() string { return "passive_emails" }

// Do records every address found, tallying all of them and persisting
// the first-seen ones.
func (s *PassiveEmailStep) Do(ctx context.Context, state *State) error {
	hits := s.Scanner.Collect(ctx, state.Execution.Target)

	for _, hit := range hits {
		email, ok := deobfuscate.Normalize(hit.Value)
		if !ok {
			continue
		}
		state.EmailsHTML[email] = struct{}{}

		if !state.IsNewEmail(email) {
			continue
		}
		if err := state.Store.InsertEmail(ctx, state.Execution.ID, email, state.Execution.Target,
			model.TechniquePassiveHTML, hit.Context, hit.Context); err != nil {
			return err
		}
	}
	return nil
}

// CrawlStep runs the live crawl and, when enabled, the archived-URL
// crawl, then processes every page for emails and credentials.
type CrawlStep struct {
	LiveCrawler    PageCrawler
	WaybackCrawler PageCrawler
	Archive        ArchiveLister
	WaybackEnabled bool
	WaybackLimit   int
	Logger         *slog.Logger
}

// Name returns the step name.
func (s *CrawlStep) Name() string { return "crawler" }

// Do crawls the live site bounded to the target's domain, crawls the
// archived URLs unconstrained (archived captures may span redirected
// hosts), and routes each page's content through email deobfuscation
// and credential extraction. Live pages are retained for the later
// script-analysis and rendering steps.
func (s *CrawlStep) Do(ctx context.Context, state *State) error {
	target := state.Execution.Target

	seeds := []string{
		"https://" + target,
		"https://www." + target,
		"http://" + target,
		"http://www." + target,
	}
	livePages := s.LiveCrawler.Run(ctx, seeds, target, model.OriginLive)
	state.LivePages = livePages
	s.Logger.Debug("live crawl finished", "target", target, "pages", len(livePages))

	var waybackPages []model.Page
	if s.WaybackEnabled {
		archived := s.Archive.Collect(ctx, target, s.WaybackLimit)
		state.WaybackURLCount = len(archived)
		if len(archived) > 0 {
			waybackPages = s.WaybackCrawler.Run(ctx, archived, "", model.OriginWayback)
		}
		s.Logger.Debug("archived crawl finished", "target", target,
			"urls", len(archived), "pages", len(waybackPages))
	}

	for _, page := range append(livePages, waybackPages...) {
		if err := s.processPage(ctx, state, page); err != nil {
			return err
		}
	}
	return nil
}

// processPage tallies and persists one crawled page's findings.
func (s *CrawlStep) processPage(ctx context.Context, state *State, page model.Page) error {
	if err := state.Store.InsertCrawlPage(ctx, state.Execution.ID, page); err != nil {
		return err
	}

	for _, raw := range page.Emails {
		email, ok := deobfuscate.Normalize(raw)
		if !ok {
			continue
		}
		state.EmailsCrawler[email] = struct{}{}
		if page.Origin == model.OriginWayback {
			state.EmailsFromWayback[email] = struct{}{}
		} else {
			state.EmailsFromLive[email] = struct{}{}
		}

		if !state.IsNewEmail(email) {
			continue
		}
		if err := state.Store.InsertEmail(ctx, state.Execution.ID, email, hostOf(page.URL),
			model.TechniqueCrawlerHTML, page.URL, page.Origin); err != nil {
			return err
		}
	}

	for _, cred := range credential.ExtractFromText(page.RawHTML, model.TechniqueCrawlerHTML, page.Origin) {
		cred.Source = page.URL
		state.CredsHTML[tallyKey(cred)] = struct{}{}

		if !state.IsNewCredential(cred) {
			continue
		}
		if err := state.Store.InsertCredential(ctx, state.Execution.ID, cred); err != nil {
			return err
		}
	}
	return nil
}

// JSParseStep statically analyzes the scripts collected by the live
// crawl. Archived pages are excluded: their scripts are rewritten by
// the archive and rarely fetchable as-is.
type JSParseStep struct {
	Parser     ScriptAnalyzer
	MaxScripts int
	Logger     *slog.Logger
}

// Name returns the step name.
func (s *JSParseStep) Name() string { return "js_parsing" }

// Do fetches each live page's scripts, bounded by MaxScripts, and
// extracts emails and credentials from their bodies. Pages synthesized
// from @-containing URLs carry no fetchable scripts and are skipped.
func (s *JSParseStep) Do(ctx context.Context, state *State) error {
	parsed := 0

	for _, page := range state.LivePages {
		if parsed >= s.MaxScripts {
			break
		}
		if strings.Contains(page.URL, "@") {
			continue
		}

		for _, scriptURL := range page.Scripts {
			if parsed >= s.MaxScripts {
				break
			}

			res := s.Parser.Parse(ctx, scriptURL, state.Execution.Target)
			if res == nil {
				continue
			}
			parsed++

			if err := s.processScript(ctx, state, res); err != nil {
				return err
			}
		}
	}

	s.Logger.Debug("script analysis finished", "target", state.Execution.Target,
		"parsed", parsed, "limit", s.MaxScripts)
	return nil
}

// processScript tallies and persists one analyzed script's findings.
func (s *JSParseStep) processScript(ctx context.Context, state *State, res *model.ScriptResult) error {
	if err := state.Store.InsertScriptResult(ctx, state.Execution.ID, *res); err != nil {
		return err
	}

	for _, raw := range res.Emails {
		email, ok := deobfuscate.Normalize(raw)
		if !ok {
			continue
		}
		state.EmailsJS[email] = struct{}{}

		if !state.IsNewEmail(email) {
			continue
		}
		if err := state.Store.InsertEmail(ctx, state.Execution.ID, email, hostOf(res.ScriptURL),
			model.TechniqueJSStatic, res.ScriptURL, model.OriginLive); err != nil {
			return err
		}
	}

	for _, cred := range credential.ExtractFromText(res.Raw, model.TechniqueJSStatic, model.OriginLive) {
		cred.Source = res.ScriptURL
		state.CredsJS[tallyKey(cred)] = struct{}{}

		if !state.IsNewCredential(cred) {
			continue
		}
		if err := state.Store.InsertCredential(ctx, state.Execution.ID, cred); err != nil {
			return err
		}
	}
	return nil
}

// ScrapeStep renders live pages in a headless browser and extracts
// findings from the final DOM and the JSON responses observed during
// rendering.
type ScrapeStep struct {
	Renderer PageRenderer
	Logger   *slog.Logger
}

// Name returns the step name.
func (s *ScrapeStep) Name() string { return "scraping" }

// Do renders each live page. Pages synthesized from @-containing URLs
// were never fetched and are skipped. Render failures skip the page.
func (s *ScrapeStep) Do(ctx context.Context, state *State) error {
	for _, page := range state.LivePages {
		if strings.Contains(page.URL, "@") {
			continue
		}

		res := s.Renderer.Render(ctx, page.URL)
		if res == nil {
			continue
		}
		if err := s.processRender(ctx, state, page.URL, res); err != nil {
			return err
		}
	}
	return nil
}

// processRender tallies and persists one rendered page's findings.
func (s *ScrapeStep) processRender(ctx context.Context, state *State, pageURL string, res *model.RenderResult) error {
	for _, raw := range res.EmailsDOM {
		email, ok := deobfuscate.Normalize(raw)
		if !ok {
			continue
		}
		state.EmailsScrapingDOM[email] = struct{}{}

		if !state.IsNewEmail(email) {
			continue
		}
		if err := state.Store.InsertEmail(ctx, state.Execution.ID, email, hostOf(pageURL),
			model.TechniqueScrapingDOM, pageURL, "rendered_dom"); err != nil {
			return err
		}
	}

	for _, cred := range res.CredentialsDOM {
		cred.Source = pageURL
		state.CredsScrapingDOM[tallyKey(cred)] = struct{}{}

		if !state.IsNewCredential(cred) {
			continue
		}
		if err := state.Store.InsertCredential(ctx, state.Execution.ID, cred); err != nil {
			return err
		}
	}

	for _, raw := range res.EmailsJSON {
		email, ok := deobfuscate.Normalize(raw)
		if !ok {
			continue
		}
		state.EmailsScrapingJSON[email] = struct{}{}

		if !state.IsNewEmail(email) {
			continue
		}
		if err := state.Store.InsertEmail(ctx, state.Execution.ID, email, hostOf(pageURL),
			model.TechniqueScrapingJSON, pageURL, "fetch/xhr"); err != nil {
			return err
		}
	}

	for _, cred := range res.CredentialsJSON {
		cred.Source = pageURL
		state.CredsScrapingJSON[tallyKey(cred)] = struct{}{}

		if !state.IsNewCredential(cred) {
			continue
		}
		if err := state.Store.InsertCredential(ctx, state.Execution.ID, cred); err != nil {
			return err
		}
	}
	return nil
}
