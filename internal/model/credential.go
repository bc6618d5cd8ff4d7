package model

import "strings"

// CredentialKind classifies an extracted secret by the shape of the key
// it was assigned to.
type CredentialKind string

// Credential kinds. The string values are stored in the database and used
// in dedup keys, so they are fixed.
const (
	KindUser     CredentialKind = "user"
	KindPassword CredentialKind = "password"
	KindToken    CredentialKind = "token"
)

// Credential is a labeled secret extracted from free text or structured
// data. It carries provenance (technique, source, context), but identity
// for deduplication is only (Kind, lowercased Value): two credentials
// found by different techniques are the same finding.
//
// No verification is performed: Value is a literal string that matched a
// shape-based heuristic, with no guarantee it is a working secret.
type Credential struct {
	// Kind is the credential classification.
	Kind CredentialKind

	// Value is the literal extracted secret.
	Value string

	// Technique is the collection method that surfaced this credential.
	Technique string

	// Source is the URL or locator of the text the credential came from.
	Source string

	// Context is free-form provenance detail (e.g., "html", "js",
	// "rendered", "fetch/xhr").
	Context string
}

// DedupKey returns the identity key used for cross-technique
// deduplication. Provenance fields do not participate.
func (c Credential) DedupKey() string {
	return string(c.Kind) + "\x00" + strings.ToLower(c.Value)
}
