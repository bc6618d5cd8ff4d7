// Package credential extracts labeled secrets from free text and from
// structured JSON payloads.
//
// Extraction is purely shape-based: a value is reported because it was
// assigned to a credential-looking key (user/password/token families),
// not because it was verified to work. Minimum value lengths filter the
// worst of the noise - three characters for usernames and passwords,
// eight for tokens.
//
// Text mode matches key = "value" assignments with three regex families
// over the original-case input. Tree mode recursively walks a JSON
// document, matching mapping keys case-insensitively against fixed key
// sets, with a defensive depth cap.
package credential
