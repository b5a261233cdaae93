// Package database stores crawl session history in SQLite.
//
// One database file holds every session: a sessions table with the full
// summary as JSON plus the columns the listing needs, and a documents
// table with one row per discovered URL. Discovery and the output phase
// write different column groups of the same document row, so both sides
// upsert and neither overwrites the other.
//
// The driver is modernc.org/sqlite: CGO-free, so cross-compilation stays
// easy, and the database is a single file with no external service.
package database
