package deobfuscate

import (
	"encoding/base64"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// emailPattern is the canonical email shape: local part, "@", domain with
// a TLD of at least two letters.
const emailPattern = `[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`

var (
	emailRegex = regexp.MustCompile(emailPattern)

	// substitutions rewrite the common [at]/(dot)-style disguises back into
	// email punctuation. All rewrites are applied once, in order, before the
	// text is rescanned; the pass is a single combined rewrite, not a loop.
	substitutions = []struct {
		pattern *regexp.Regexp
		repl    string
	}{
		{regexp.MustCompile(`\s*\[\s*at\s*\]\s*`), "@"},
		{regexp.MustCompile(`\s*\(\s*at\s*\)\s*`), "@"},
		{regexp.MustCompile(`\s+at\s+`), "@"},
		{regexp.MustCompile(`\s*\[\s*dot\s*\]\s*`), "."},
		{regexp.MustCompile(`\s*\(\s*dot\s*\)\s*`), "."},
		{regexp.MustCompile(`\s+dot\s+`), "."},
	}

	// concatRegex matches the quoted-string-concatenation idiom
	// "user" + "@" + "example.com" (any quote style).
	concatRegex = regexp.MustCompile(`['"]([a-zA-Z0-9._%+\-]+)['"]\s*\+\s*['"]@['"]\s*\+\s*['"]([a-zA-Z0-9.\-]+\.[a-zA-Z]{2,})['"]`)

	// base64CallRegex matches an explicit decode-call wrapper around a
	// base64 payload of at least 20 alphabet characters.
	base64CallRegex = regexp.MustCompile(`atob\(\s*['"]([A-Za-z0-9+/=]{20,})['"]\s*\)`)

	// base64TokenRegex matches free-standing base64 runs of at least 24
	// characters. Deliberately permissive: decoded garbage is harmless
	// because results still have to match the canonical email shape.
	base64TokenRegex = regexp.MustCompile(`\b[A-Za-z0-9+/=]{24,}\b`)

	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// ExtractEmails recovers email addresses from arbitrary text, including
// addresses hidden behind common obfuscation tricks. Six independent
// passes run over the text and their results are unioned:
//
//  1. direct match of the canonical shape
//  2. [at]/(dot)/word substitution, then rescan
//  3. quoted-string concatenation reassembly
//  4. HTML-entity and backslash-escape decoding, then rescan
//  5. base64 inside explicit decode calls
//  6. free-standing base64 runs after whitespace stripping
//
// Every pass fails soft: a decode error drops that candidate only. The
// function is pure; empty input yields an empty set.
func ExtractEmails(text string) map[string]struct{} {
	found := make(map[string]struct{})
	if text == "" {
		return found
	}

	lowered := strings.ToLower(text)

	// 1. Emails in the clear.
	addMatches(found, lowered)

	// 2. Obfuscation substitutions, then rescan.
	candidate := lowered
	for _, s := range substitutions {
		candidate = s.pattern.ReplaceAllString(candidate, s.repl)
	}
	addMatches(found, candidate)

	// 3. Quoted-string concatenation. Runs on the original-case text so
	// the quote matching sees the source as written; results are
	// lowercased afterwards.
	for _, m := range concatRegex.FindAllStringSubmatch(text, -1) {
		email := strings.ToLower(m[1] + "@" + m[2])
		if emailRegex.MatchString(email) {
			found[email] = struct{}{}
		}
	}

	// 4. HTML entities and backslash escapes.
	unescaped := html.UnescapeString(text)
	if u, ok := unescapeBackslash(unescaped); ok {
		unescaped = u
	}
	addMatches(found, strings.ToLower(unescaped))

	// 5. Base64 inside explicit decode calls.
	for _, m := range base64CallRegex.FindAllStringSubmatch(text, -1) {
		decodeBase64Into(found, m[1])
	}

	// 6. Loose base64 runs. Whitespace is stripped first so payloads
	// wrapped across lines still form one token.
	compact := whitespaceRegex.ReplaceAllString(text, "")
	for _, token := range base64TokenRegex.FindAllString(compact, -1) {
		decodeBase64Into(found, token)
	}

	return found
}

// Normalize canonicalizes a raw email candidate: trims whitespace and
// lowercases. Returns false for empty input or values without "@".
func Normalize(email string) (string, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", false
	}
	return email, true
}

// addMatches scans text for the canonical email shape and records matches.
func addMatches(found map[string]struct{}, text string) {
	for _, e := range emailRegex.FindAllString(text, -1) {
		found[e] = struct{}{}
	}
}

// unescapeBackslash attempts a best-effort decode of backslash escape
// sequences (\n, \xNN, \uNNNN) in s. It reports false when s contains
// escapes that cannot be interpreted; callers then keep the input as-is.
func unescapeBackslash(s string) (string, bool) {
	if !strings.Contains(s, `\`) {
		return s, false
	}
	// strconv.Unquote rejects raw control characters inside a quoted
	// string, so re-escape the ones HTML text commonly contains.
	escaped := strings.NewReplacer(
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	).Replace(s)
	u, err := strconv.Unquote(`"` + escaped + `"`)
	if err != nil {
		return "", false
	}
	return u, true
}

// decodeBase64Into decodes token and records any email shapes found in the
// decoded text. Undecodable tokens and invalid byte sequences are dropped
// silently.
func decodeBase64Into(found map[string]struct{}, token string) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		// Tolerate missing padding; loose tokens often lose their '='.
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(token, "="))
		if err != nil {
			return
		}
	}
	decoded := strings.ToValidUTF8(string(raw), "")
	addMatches(found, strings.ToLower(decoded))
}
