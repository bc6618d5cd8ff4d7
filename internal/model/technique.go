package model

// Technique names identify the data-collection method that produced a
// finding. They are stored as provenance on every persisted email and
// credential record and drive the per-technique yield metrics, so the
// string values are part of the stored schema and must not change.
const (
	TechniqueSubdomains   = "subdomains_crtsh"
	TechniqueWhois        = "whois"
	TechniqueDNS          = "dns_resolver"
	TechniquePassiveHTML  = "passive_html"
	TechniqueCrawlerHTML  = "crawler_html"
	TechniqueJSStatic     = "js_static"
	TechniqueScrapingDOM  = "scraping_dom"
	TechniqueScrapingJSON = "scraping_json"
)

// Domain resolution states recorded in domain_results.
const (
	DomainStatusNotEvaluated  = "not_evaluated"
	DomainStatusResolvable    = "resolvable"
	DomainStatusNotResolvable = "not_resolvable"
)

// Page origins. Live pages come from the current site; wayback pages come
// from the historical archive. The origin tag decides which coverage
// metrics a page's emails count toward.
const (
	OriginLive    = "live"
	OriginWayback = "wayback"
)

// Credential source contexts used by the text extractor.
const (
	SourceHTML = "html"
	SourceJS   = "js"
)
