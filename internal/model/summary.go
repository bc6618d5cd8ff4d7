package model

// Metric is one named numeric measurement computed at the end of an
// execution (per-technique yields, incremental-value counts, coverage).
type Metric struct {
	// Name is the fixed metric identifier (e.g., "emails_scraping_new").
	Name string

	// Value is the measurement. Counts are stored as float64 because the
	// metrics table holds arbitrary numeric values.
	Value float64
}

// Summary is the end-of-run view of an execution, used by the report
// writers. It is derived state: everything here is also persisted.
type Summary struct {
	// Execution is the run this summary describes.
	Execution *Execution

	// Domains is the number of distinct domains collected (seed included).
	Domains int

	// NewEmails is the number of first-seen emails persisted.
	NewEmails int

	// NewCredentials is the number of first-seen credentials persisted.
	NewCredentials int

	// Metrics are the named metrics, in the order they were computed.
	Metrics []Metric
}
