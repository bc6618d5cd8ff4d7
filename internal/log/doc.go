// Package log provides logging with automatic sanitization of
// sensitive values, built on the standard slog package.
//
// The scanner's whole job is to find credentials, which makes its own
// logs a leak vector: a debug line like "new credential value=hunter2"
// defeats the point of storing findings in a local database. The
// SecureHandler masks attribute values that look like secrets, by key
// name (password, token, cookie and friends) or by value shape (JWTs,
// bearer headers, long API-key strings), before they reach the
// underlying text or JSON handler.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("credential stored", "password", v) // logged as ***REDACTED***
package log
