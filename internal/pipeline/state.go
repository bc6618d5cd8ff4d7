package pipeline

import (
	"context"
	"strings"

	"github.com/seiran-lab/domainscan/internal/model"
)

// Store is the persistence sink the pipeline writes findings to.
// *database.ScanDB satisfies it; tests substitute an in-memory fake.
type Store interface {
	InsertExecution(ctx context.Context, exec *model.Execution) error
	UpdateExecution(ctx context.Context, exec *model.Execution) error
	InsertDomain(ctx context.Context, executionID, domain, source, status string) error
	UpdateDomainStatus(ctx context.Context, executionID, domain, status string) error
	InsertResolvedDomain(ctx context.Context, executionID string, addr model.ResolvedAddress, source string) error
	InsertWhois(ctx context.Context, executionID, domain string, rec *model.WhoisRecord) error
	InsertEmail(ctx context.Context, executionID, email, domain, technique, source, context string) error
	InsertCrawlPage(ctx context.Context, executionID string, page model.Page) error
	InsertScriptResult(ctx context.Context, executionID string, res model.ScriptResult) error
	InsertCredential(ctx context.Context, executionID string, cred model.Credential) error
	InsertMetric(ctx context.Context, executionID, metric string, value float64) error
}

// State is the accumulated per-execution state threaded through the
// pipeline steps. It owns first-seen dedup tracking, the per-technique
// tally sets, and the intermediate crawl results later steps consume.
//
// Dedup and tallies are deliberately separate: the first technique to
// see a value owns its persisted record, but every technique still
// counts the value in its own tally. Cross-deduplicating the tallies
// would make the per-technique metrics lie about what each technique
// actually found.
type State struct {
	// Execution is the run this state belongs to.
	Execution *model.Execution

	// Store receives every persisted finding.
	Store Store

	// Domains is the collected domain set in insertion order, seed
	// first. Ordering is fixed so a capped DNS pass resolves the same
	// domains on every run.
	Domains []string

	// LivePages are the pages produced by the live crawl, consumed by
	// the script-analysis and rendering steps.
	LivePages []model.Page

	// WaybackURLCount is how many archived URLs the historical index
	// returned, recorded as a metric at the end.
	WaybackURLCount int

	// Metrics accumulates the end-of-run measurements in computation
	// order.
	Metrics []model.Metric

	// First-seen tracking. seenCreds keys are Credential.DedupKey():
	// kind plus lowercased value.
	seenEmails  map[string]struct{}
	seenCreds   map[string]struct{}
	domainSet   map[string]struct{}

	// Per-technique email tallies (normalized addresses).
	EmailsHTML         map[string]struct{}
	EmailsCrawler      map[string]struct{}
	EmailsJS           map[string]struct{}
	EmailsScrapingDOM  map[string]struct{}
	EmailsScrapingJSON map[string]struct{}
	EmailsFromLive     map[string]struct{}
	EmailsFromWayback  map[string]struct{}

	// Per-technique credential tallies, keyed by kind plus exact value.
	CredsHTML         map[string]struct{}
	CredsJS           map[string]struct{}
	CredsScrapingDOM  map[string]struct{}
	CredsScrapingJSON map[string]struct{}
}

// NewState creates the state for one execution, with the target already
// seeded into the domain set. The seed is present even when subdomain
// discovery is disabled or finds nothing.
func NewState(exec *model.Execution, store Store) *State {
	s := &State{
		Execution:          exec,
		Store:              store,
		seenEmails:         make(map[string]struct{}),
		seenCreds:          make(map[string]struct{}),
		domainSet:          make(map[string]struct{}),
		EmailsHTML:         make(map[string]struct{}),
		EmailsCrawler:      make(map[string]struct{}),
		EmailsJS:           make(map[string]struct{}),
		EmailsScrapingDOM:  make(map[string]struct{}),
		EmailsScrapingJSON: make(map[string]struct{}),
		EmailsFromLive:     make(map[string]struct{}),
		EmailsFromWayback:  make(map[string]struct{}),
		CredsHTML:          make(map[string]struct{}),
		CredsJS:            make(map[string]struct{}),
		CredsScrapingDOM:   make(map[string]struct{}),
		CredsScrapingJSON:  make(map[string]struct{}),
	}
	s.AddDomain(exec.Target)
	return s
}

// AddDomain records a domain, preserving first-insertion order.
// Returns true when the domain was not known yet.
func (s *State) AddDomain(domain string) bool {
	if _, dup := s.domainSet[domain]; dup {
		return false
	}
	s.domainSet[domain] = struct{}{}
	s.Domains = append(s.Domains, domain)
	return true
}

// IsNewEmail reports whether the normalized address has not been seen
// in this execution, and marks it seen. The first caller owns the
// persisted record.
func (s *State) IsNewEmail(email string) bool {
	if _, dup := s.seenEmails[email]; dup {
		return false
	}
	s.seenEmails[email] = struct{}{}
	return true
}

// IsNewCredential reports whether the credential's identity (kind plus
// case-insensitive value) has not been seen in this execution, and
// marks it seen.
func (s *State) IsNewCredential(cred model.Credential) bool {
	key := cred.DedupKey()
	if _, dup := s.seenCreds[key]; dup {
		return false
	}
	s.seenCreds[key] = struct{}{}
	return true
}

// NewEmailCount is the number of first-seen emails persisted so far.
func (s *State) NewEmailCount() int {
	return len(s.seenEmails)
}

// NewCredentialCount is the number of first-seen credentials persisted
// so far.
func (s *State) NewCredentialCount() int {
	return len(s.seenCreds)
}

// AddMetric appends one named measurement.
func (s *State) AddMetric(name string, value float64) {
	s.Metrics = append(s.Metrics, model.Metric{Name: name, Value: value})
}

// tallyKey is the per-technique tally identity for a credential: kind
// plus exact value. Unlike the dedup key, case is preserved, so two
// spellings found by one technique count twice in its tally.
func tallyKey(cred model.Credential) string {
	return string(cred.Kind) + "\x00" + cred.Value
}

// hostOf extracts the host part of a URL without parsing overhead
// beyond what attribution needs.
func hostOf(rawURL string) string {
	rest := rawURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
