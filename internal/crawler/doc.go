// Package crawler implements the bounded-frontier web crawler feeding the
// extraction engines.
//
// # Traversal
//
// The crawl is breadth-first over a Frontier (FIFO queue plus visited
// set). Termination is guaranteed: the visited-count ceiling is checked
// every iteration, and the queue only grows with unvisited normalized
// URLs.
//
// # What the crawler is not
//
// This is not a general-purpose crawler. There is no robots.txt handling,
// no JavaScript execution, and no rate limiting; the crawl is bounded by
// max-pages and the HTTP client's timeout only. Rendering happens in the
// scraper package, behind a separate technique.
package crawler
