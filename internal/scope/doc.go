// Package scope decides whether URLs and domains belong to the target
// scope of a reconnaissance run.
//
// Scope has one deliberate special case: any host under the public web
// archive is always internal, because archived snapshots of the target are
// served from the archive's own host. Without this exception an archived
// crawl could never follow a single link.
package scope
