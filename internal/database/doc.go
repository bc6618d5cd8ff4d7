// Package database provides SQLite-based persistence for scan
// executions and their findings.
//
// The schema separates unique findings from raw traces. The
// email_results and credential_results tables carry UNIQUE constraints
// per execution, and inserts use ON CONFLICT DO NOTHING: the first
// technique to store a value owns its attribution, and later techniques
// finding the same value change nothing. The crawler_results and
// js_results tables have no such constraint; they record everything
// each technique saw, which is what per-technique tallies and debugging
// rely on.
//
// The database uses modernc.org/sqlite, a pure-Go driver, so the binary
// stays cgo-free.
package database
