package credential

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/seiran-lab/domainscan/internal/model"
)

// Assignment regexes match key = "value" / key = 'value' patterns in raw
// (original case) text. The key families and minimum value lengths differ
// per kind: short usernames are plausible, short tokens are noise.
var (
	userRegex  = regexp.MustCompile(`(?i)\b(?:user(?:name)?|login)[\w\-]*\s*=\s*['"]([^'"\s]{3,})['"]`)
	passRegex  = regexp.MustCompile(`(?i)\b(?:pass(?:word)?|pwd)[\w\-]*\s*=\s*['"]([^'"\s]{3,})['"]`)
	tokenRegex = regexp.MustCompile(`(?i)\b(?:api[_\-]?key|token|secret)[\w\-]*\s*=\s*['"]([^'"\s]{8,})['"]`)
)

// Key sets for the structured tree walk. Keys are compared after
// lowercasing.
var (
	userKeys  = map[string]struct{}{"user": {}, "username": {}, "login": {}}
	passKeys  = map[string]struct{}{"password": {}, "pwd": {}, "pass": {}}
	tokenKeys = map[string]struct{}{"apikey": {}, "api_key": {}, "token": {}, "secret": {}}
)

// maxTreeDepth caps recursion into structured payloads. Response bodies
// are data, not expected to nest this deep; the cap is hardening against
// pathological inputs, not observed behavior.
const maxTreeDepth = 64

// ExtractFromText scans raw text for credential-shaped assignments and
// returns them in scan order: all user matches, then password, then token.
// Duplicate (kind, value) pairs within one call are dropped, first
// occurrence wins. The technique and context are attached as provenance;
// the caller supplies the source locator.
func ExtractFromText(text, technique, context string) []model.Credential {
	if text == "" {
		return nil
	}

	var results []model.Credential
	seen := make(map[string]struct{})

	add := func(kind model.CredentialKind, value string) {
		// Within-call dedup is by exact (kind, value); the case-insensitive
		// cross-technique dedup happens later in the orchestrator.
		key := string(kind) + "\x00" + value
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		results = append(results, model.Credential{Kind: kind, Value: value, Technique: technique, Context: context})
	}

	for _, m := range userRegex.FindAllStringSubmatch(text, -1) {
		add(model.KindUser, m[1])
	}
	for _, m := range passRegex.FindAllStringSubmatch(text, -1) {
		add(model.KindPassword, m[1])
	}
	for _, m := range tokenRegex.FindAllStringSubmatch(text, -1) {
		add(model.KindToken, m[1])
	}

	return results
}

// ExtractFromJSON walks a JSON document and returns credentials whose keys
// match the fixed key sets and whose values are scalar strings. Matching
// is case-insensitive on the key; the walk always recurses into values
// regardless of a match, since a credential-named key can hold a nested
// structure. Arrays are walked element by element. Invalid JSON yields
// nothing.
//
// Design decision: We walk gjson's parsed tree rather than a map from
// encoding/json because gjson preserves document order, which keeps the
// returned sequence deterministic for identical input.
func ExtractFromJSON(raw, technique, context string) []model.Credential {
	if raw == "" || !gjson.Valid(raw) {
		return nil
	}

	var results []model.Credential
	seen := make(map[string]struct{})
	walkValue(gjson.Parse(raw), technique, context, 0, &results, seen)
	return results
}

// walkValue recurses into one gjson value, emitting matches along the way.
func walkValue(v gjson.Result, technique, context string, depth int, results *[]model.Credential, seen map[string]struct{}) {
	if depth > maxTreeDepth {
		return
	}

	switch {
	case v.IsObject():
		v.ForEach(func(key, value gjson.Result) bool {
			if value.Type == gjson.String {
				if kind, ok := classifyKey(key.String()); ok {
					dedupKey := string(kind) + "\x00" + value.String()
					if _, dup := seen[dedupKey]; !dup {
						seen[dedupKey] = struct{}{}
						*results = append(*results, model.Credential{
							Kind: kind, Value: value.String(), Technique: technique, Context: context,
						})
					}
				}
			}
			walkValue(value, technique, context, depth+1, results, seen)
			return true
		})
	case v.IsArray():
		v.ForEach(func(_, value gjson.Result) bool {
			walkValue(value, technique, context, depth+1, results, seen)
			return true
		})
	}
}

// classifyKey maps a mapping key to a credential kind.
func classifyKey(key string) (model.CredentialKind, bool) {
	key = strings.ToLower(key)
	if _, ok := userKeys[key]; ok {
		return model.KindUser, true
	}
	if _, ok := passKeys[key]; ok {
		return model.KindPassword, true
	}
	if _, ok := tokenKeys[key]; ok {
		return model.KindToken, true
	}
	return "", false
}
