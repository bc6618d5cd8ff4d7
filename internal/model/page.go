package model

// Page is the record produced by the crawler for one visited URL.
// It is immutable after creation: the crawler emits at most one Page per
// normalized URL per crawl.
type Page struct {
	// URL is the normalized URL this page was fetched from.
	URL string

	// Emails are the addresses extracted from the page's rendered text
	// and raw markup (union of both), already lowercased.
	Emails []string

	// Links are the in-scope anchor targets found on the page.
	Links []string

	// Scripts are the in-scope script sources found on the page.
	// Scripts are collected for later static analysis, never crawled.
	Scripts []string

	// RawHTML is the raw response body. Empty for pages synthesized from
	// @-containing URLs that were never fetched.
	RawHTML string

	// Origin tags where the page came from: OriginLive or OriginWayback.
	Origin string
}

// ScriptResult is the outcome of statically analyzing one script file.
type ScriptResult struct {
	// ScriptURL is the script's own URL.
	ScriptURL string

	// Emails are addresses recovered from the script body.
	Emails []string

	// URLs are endpoint URLs referenced by the script.
	URLs []string

	// Raw is the script body, kept for credential extraction.
	Raw string
}

// RenderResult is what the headless-browser renderer observed for one
// page: content from the final DOM plus same-origin JSON responses seen
// on the network during rendering.
type RenderResult struct {
	// URL is the page that was rendered.
	URL string

	// EmailsDOM are addresses extracted from the rendered DOM's visible text.
	EmailsDOM []string

	// CredentialsDOM are credentials extracted from the rendered DOM's
	// visible text.
	CredentialsDOM []Credential

	// EmailsJSON are addresses extracted from captured JSON response bodies.
	EmailsJSON []string

	// CredentialsJSON are credentials extracted from captured JSON
	// response bodies via the structured tree walk.
	CredentialsJSON []Credential

	// RawHTML is the rendered document markup.
	RawHTML string
}
