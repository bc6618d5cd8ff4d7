package pipeline

import (
	"context"
	"log/slog"
)

// Metric names persisted at the end of every execution. The names are
// stable identifiers: reports and historical queries match on them.
const (
	MetricEmailsPassiveHTML      = "emails_passive_html"
	MetricEmailsCrawlerHTML      = "emails_crawler_html"
	MetricEmailsJSStatic         = "emails_js_static"
	MetricEmailsScrapingDOM      = "emails_scraping_dom"
	MetricEmailsScrapingJSON     = "emails_scraping_json"
	MetricEmailsScrapingTotal    = "emails_scraping_total"
	MetricEmailsScrapingNew      = "emails_scraping_new"
	MetricCredsHTML              = "creds_html"
	MetricCredsJSStatic          = "creds_js_static"
	MetricCredsScrapingDOM       = "creds_scraping_dom"
	MetricCredsScrapingJSON      = "creds_scraping_json"
	MetricCredsScrapingTotal     = "creds_scraping_total"
	MetricCredsScrapingNew       = "creds_scraping_new"
	MetricWaybackURLs            = "wayback_urls"
	MetricEmailsFromWayback      = "emails_from_wayback"
	MetricEmailsFromLive         = "emails_from_live"
	MetricEmailsTotalWithWayback = "emails_total_with_wayback"
)

// MetricsStep computes the per-technique and incremental-value metrics
// from the tally sets and persists them.
//
// The incremental-value question the metrics answer: what did the
// expensive active rendering find that the cheap static techniques
// (passive scan, crawl, script analysis) had not already found? The
// baseline is the union of the static tallies; scraping_new is the
// rendered findings minus that baseline.
type MetricsStep struct {
	Logger *slog.Logger
}

// Name returns the step name.
func (s *MetricsStep) Name() string { return "metrics" }

// Do computes and persists every metric in a fixed order.
func (s *MetricsStep) Do(ctx context.Context, state *State) error {
	baseline := union(state.EmailsHTML, state.EmailsCrawler, state.EmailsJS)
	baselineCreds := union(state.CredsHTML, state.CredsJS)

	scrapingTotal := union(state.EmailsScrapingDOM, state.EmailsScrapingJSON)
	credsScrapingTotal := union(state.CredsScrapingDOM, state.CredsScrapingJSON)

	scrapingNew := difference(scrapingTotal, baseline)
	credsScrapingNew := difference(credsScrapingTotal, baselineCreds)

	totalWithWayback := union(state.EmailsFromLive, state.EmailsFromWayback)

	metrics := []struct {
		name  string
		value int
	}{
		{MetricEmailsPassiveHTML, len(state.EmailsHTML)},
		{MetricEmailsCrawlerHTML, len(state.EmailsCrawler)},
		{MetricEmailsJSStatic, len(state.EmailsJS)},
		{MetricEmailsScrapingDOM, len(state.EmailsScrapingDOM)},
		{MetricEmailsScrapingJSON, len(state.EmailsScrapingJSON)},
		{MetricEmailsScrapingTotal, len(scrapingTotal)},
		{MetricEmailsScrapingNew, len(scrapingNew)},
		{MetricCredsHTML, len(state.CredsHTML)},
		{MetricCredsJSStatic, len(state.CredsJS)},
		{MetricCredsScrapingDOM, len(state.CredsScrapingDOM)},
		{MetricCredsScrapingJSON, len(state.CredsScrapingJSON)},
		{MetricCredsScrapingTotal, len(credsScrapingTotal)},
		{MetricCredsScrapingNew, len(credsScrapingNew)},
		{MetricWaybackURLs, state.WaybackURLCount},
		{MetricEmailsFromWayback, len(state.EmailsFromWayback)},
		{MetricEmailsFromLive, len(state.EmailsFromLive)},
		{MetricEmailsTotalWithWayback, len(totalWithWayback)},
	}

	for _, m := range metrics {
		state.AddMetric(m.name, float64(m.value))
		if err := state.Store.InsertMetric(ctx, state.Execution.ID, m.name, float64(m.value)); err != nil {
			return err
		}
	}

	s.Logger.Debug("metrics computed", "target", state.Execution.Target,
		"emails_total_with_wayback", len(totalWithWayback),
		"emails_scraping_new", len(scrapingNew),
		"creds_scraping_new", len(credsScrapingNew),
	)
	return nil
}

// union returns the set union of the given sets.
func union(sets ...map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for _, set := range sets {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}

// difference returns a minus b.
func difference(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range a {
		if _, dup := b[k]; !dup {
			out[k] = struct{}{}
		}
	}
	return out
}
