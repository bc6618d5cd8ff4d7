// Package pipeline orchestrates a reconnaissance run: a fixed sequence
// of techniques against one target, shared dedup state, per-technique
// tallies, and end-of-run metrics.
//
// The techniques run in order: subdomain discovery, WHOIS, DNS
// resolution, passive email scan, crawl (live then archived), script
// static analysis, headless-browser rendering, metrics. Every technique
// is optional; the order is fixed because attribution depends on it.
// The first technique to find a value persists it and owns it: a
// cheaper technique earlier in the sequence gets credit over an
// expensive one later. Each technique's tally still counts everything
// it saw, so the metrics measure what a technique finds, not what it
// was first to find.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls so each technique carries its own collaborators and limits,
// failures in one technique don't abort the rest, and tests can run any
// subset of steps against a fake store.
package pipeline
