// Package model defines the core data structures shared across the scraper.
//
// This package contains the following main types:
//   - DiscoveredURL: one node of the append-only discovery tree
//   - CrawledDocument: the extracted content of one fetched page
//   - Placement: the resolved on-disk destination for one document
//   - SessionSummary: the aggregate outcome of a crawl session
//
// It also holds the shared name vocabulary for placement strategies, naming
// conventions, extraction methods, and cleaning profiles, so that the config,
// output, and extract packages can validate against one source of truth
// without importing each other.
//
// The models are serializable to JSON for the session summary artifact and
// the session database.
package model
