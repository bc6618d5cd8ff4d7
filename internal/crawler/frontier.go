package crawler

import "strings"

// Frontier is the crawl's traversal state: a FIFO queue of pending URLs
// plus the set of visited, normalized URLs.
//
// Invariant: a normalized URL is processed at most once per Frontier.
// The queue may briefly hold duplicates (the same link discovered on two
// pages); the visited check on dequeue is what enforces the invariant.
type Frontier struct {
	queue   []string
	visited map[string]struct{}
}

// NewFrontier creates a Frontier seeded with the given URLs, preserving
// their order.
func NewFrontier(seeds []string) *Frontier {
	f := &Frontier{
		queue:   make([]string, 0, len(seeds)),
		visited: make(map[string]struct{}),
	}
	f.queue = append(f.queue, seeds...)
	return f
}

// Next pops the head of the queue, normalized. Returns false when the
// queue is empty.
func (f *Frontier) Next() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	u := f.queue[0]
	f.queue = f.queue[1:]
	return NormalizeURL(u), true
}

// Enqueue appends a URL to the pending queue.
func (f *Frontier) Enqueue(url string) {
	f.queue = append(f.queue, url)
}

// Visited reports whether a normalized URL has already been processed.
func (f *Frontier) Visited(normalized string) bool {
	_, ok := f.visited[normalized]
	return ok
}

// MarkVisited records a normalized URL as processed.
func (f *Frontier) MarkVisited(normalized string) {
	f.visited[normalized] = struct{}{}
}

// VisitedCount returns the number of URLs processed so far. The crawl's
// max-pages ceiling is checked against this count.
func (f *Frontier) VisitedCount() int {
	return len(f.visited)
}

// NormalizeURL canonicalizes a URL for frontier identity: the fragment is
// removed and a trailing slash stripped. Two URLs differing only in those
// are the same frontier entry. Normalization is idempotent.
func NormalizeURL(rawURL string) string {
	if i := strings.Index(rawURL, "#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	return strings.TrimRight(rawURL, "/")
}
