// Package deobfuscate recovers email addresses hidden behind common
// anti-scraping tricks.
//
// # The cascade
//
// Sites obfuscate contact addresses in a handful of recurring ways:
// "foo [at] bar [dot] com" spellings, JavaScript string concatenation,
// HTML entities and escape sequences, and base64 payloads passed to
// atob(). Rather than one grand regex, the engine runs six small
// independent passes and unions their results. Each pass fails soft: a
// substitution or decode error removes only that candidate, never the
// whole extraction.
//
// False positives are possible in the loose base64 pass by design: any
// long alphanumeric run is a decode candidate. This is acceptable because
// a decode result still has to match the canonical email shape to be
// reported.
//
// All functions are pure; the package holds no state and performs no I/O.
package deobfuscate
