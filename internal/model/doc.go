// Package model defines the shared data types for domainscan.
//
// # Purpose
//
// This package holds the value types that flow between the collectors,
// the crawler, the extraction engines, and the orchestrator: executions,
// page records, findings (emails and credentials), WHOIS snapshots, and
// scan summaries.
//
// # Design Philosophy
//
// The model package has no dependencies on other internal packages.
// This keeps the dependency graph acyclic: every layer can import model,
// and model imports nothing but the standard library and small utility
// libraries. Types here are plain data; behavior lives in the packages
// that produce or consume them.
package model
