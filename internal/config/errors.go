package config

import "errors"

// Configuration validation errors returned by Config.Validate().
//
// Design decision: package-level sentinel errors rather than fresh
// error instances in Validate(), so callers can use errors.Is() while
// still getting a human-readable message. Validate returns the first
// error found; fixing one often makes the rest irrelevant.
var (
	// ErrNoTarget is returned when no target domain is specified.
	ErrNoTarget = errors.New("no target specified: provide at least one domain")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxPages is returned when a crawl page ceiling is not
	// positive. A ceiling of zero would make both crawls no-ops.
	ErrInvalidMaxPages = errors.New("invalid page limit: must be positive")

	// ErrInvalidLimit is returned when a resource limit is negative.
	// Zero is allowed and disables the technique's extra work.
	ErrInvalidLimit = errors.New("invalid limit: must be non-negative")

	// ErrInvalidTimeout is returned when a network timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
