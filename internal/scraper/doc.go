// Package scraper drives a headless browser to analyze pages that only
// reveal their content after JavaScript runs.
//
// The static crawler sees the HTML a server sends; the scraper sees the
// DOM after rendering, plus every same-origin JSON response the page
// fetched while loading. Both surfaces go through the same email
// deobfuscation and credential extraction as static content, so a
// finding is a finding regardless of how it was obtained.
package scraper
