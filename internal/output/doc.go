// Package output places extracted documents on disk.
//
// An Organizer combines a placement strategy (flat, mirror,
// domain_grouped, date_organized, or custom_pattern) with a naming
// convention (url_based, title_based, timestamp, or hash). Place
// computes and reserves a destination path; Write renders the document
// with a YAML front matter header and moves it into place atomically.
// Filename collisions resolve to numeric suffixes inside one critical
// section, so concurrent placements never overwrite each other.
//
// WriteSummary finishes a session by writing crawl_summary.json at the
// output root with the organizer's write statistics folded in.
package output
