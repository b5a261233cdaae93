package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/devoperand/crawl4ai-scraper/internal/model"
)

// dbFileName is the SQLite file created under the database directory.
const dbFileName = "crawl4ai-scraper.db"

// SessionDB provides SQLite-based storage for crawl session history.
// One database holds every session, so past runs can be listed and
// inspected without re-reading output trees.
type SessionDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures SessionDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a SessionDB under dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error
// is returned instead of creating an empty one.
func Open(dbDir string, opts Options) (*SessionDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &SessionDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *SessionDB) Close() error {
	return sdb.db.Close()
}

// Path returns the path to the SQLite database file.
func (sdb *SessionDB) Path() string {
	return sdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (sdb *SessionDB) createTables() error {
	schema := `
	-- Sessions store one row per crawl run, with the full summary as JSON
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		seeds TEXT NOT NULL,
		total_discovered INTEGER DEFAULT 0,
		fetched INTEGER DEFAULT 0,
		written INTEGER DEFAULT 0,
		strategy TEXT,
		naming TEXT,
		output_root TEXT,
		dry_run INTEGER DEFAULT 0,
		aborted INTEGER DEFAULT 0,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);

	-- Documents store every discovered URL of a session with its outcome
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		url TEXT NOT NULL,
		depth INTEGER DEFAULT 0,
		parent TEXT,
		status TEXT,
		reason TEXT,
		title TEXT,
		relative_path TEXT,
		content_length INTEGER DEFAULT 0,
		crawled_at DATETIME,
		UNIQUE(session_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_session ON documents(session_id);
	CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveSession inserts or updates the session summary row.
// Saving is an upsert so a session can be saved once after discovery and
// again after the output phase updated the write counts.
func (sdb *SessionDB) SaveSession(ctx context.Context, sum *model.SessionSummary) error {
	summaryJSON, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("failed to serialize session summary: %w", err)
	}
	seedsJSON, err := json.Marshal(sum.Seeds)
	if err != nil {
		return fmt.Errorf("failed to serialize seeds: %w", err)
	}

	query := `
	INSERT INTO sessions (id, started_at, seeds, total_discovered, fetched, written,
		strategy, naming, output_root, dry_run, aborted, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		total_discovered = excluded.total_discovered,
		fetched = excluded.fetched,
		written = excluded.written,
		strategy = excluded.strategy,
		naming = excluded.naming,
		output_root = excluded.output_root,
		dry_run = excluded.dry_run,
		aborted = excluded.aborted,
		summary_json = excluded.summary_json
	`

	_, err = sdb.db.ExecContext(ctx, query,
		sum.ID,
		sum.StartedAt.UTC().Format(time.RFC3339),
		string(seedsJSON),
		sum.TotalDiscovered,
		sum.Fetched,
		sum.Written,
		sum.Strategy,
		sum.Naming,
		sum.OutputRoot,
		boolToInt(sum.DryRun),
		boolToInt(sum.Aborted),
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// SessionRecord is one row of the session listing.
type SessionRecord struct {
	ID              string
	StartedAt       time.Time
	Seeds           []string
	TotalDiscovered int
	Fetched         int
	Written         int
	Strategy        string
	Naming          string
	OutputRoot      string
	DryRun          bool
	Aborted         bool
}

// ListSessions returns all stored sessions, most recent first.
func (sdb *SessionDB) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	query := `
	SELECT id, started_at, seeds, total_discovered, fetched, written,
		strategy, naming, output_root, dry_run, aborted
	FROM sessions
	ORDER BY started_at DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var startedAt, seedsJSON string
		var dryRun, aborted int

		err := rows.Scan(
			&rec.ID,
			&startedAt,
			&seedsJSON,
			&rec.TotalDiscovered,
			&rec.Fetched,
			&rec.Written,
			&rec.Strategy,
			&rec.Naming,
			&rec.OutputRoot,
			&dryRun,
			&aborted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		rec.StartedAt = parseTimestamp(startedAt)
		rec.DryRun = dryRun != 0
		rec.Aborted = aborted != 0
		if seedsJSON != "" {
			if err := json.Unmarshal([]byte(seedsJSON), &rec.Seeds); err != nil {
				return nil, fmt.Errorf("failed to parse seeds: %w", err)
			}
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetSession retrieves the full summary of one session by ID.
// Returns nil without error when the session doesn't exist.
func (sdb *SessionDB) GetSession(ctx context.Context, id string) (*model.SessionSummary, error) {
	var summaryJSON string
	err := sdb.db.QueryRowContext(ctx,
		"SELECT summary_json FROM sessions WHERE id = ?", id).Scan(&summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sum model.SessionSummary
	if err := json.Unmarshal([]byte(summaryJSON), &sum); err != nil {
		return nil, fmt.Errorf("failed to parse session summary: %w", err)
	}
	return &sum, nil
}

// DocumentRecord is one discovered URL with its crawl outcome.
// Tree fields (depth, parent, status, reason) come from discovery;
// content fields (title, relative path, length, crawled at) come from
// the output phase and stay zero for nodes that were never fetched.
type DocumentRecord struct {
	ID            int64
	SessionID     string
	URL           string
	Depth         int
	Parent        string
	Status        string
	Reason        string
	Title         string
	RelativePath  string
	ContentLength int
	CrawledAt     time.Time
}

// UpsertNode records the discovery-tree fields for one URL.
// Content fields written by UpsertDocument are left untouched.
func (sdb *SessionDB) UpsertNode(ctx context.Context, sessionID string, node model.DiscoveredURL) error {
	query := `
	INSERT INTO documents (session_id, url, depth, parent, status, reason)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id, url) DO UPDATE SET
		depth = excluded.depth,
		parent = excluded.parent,
		status = excluded.status,
		reason = excluded.reason
	`

	_, err := sdb.db.ExecContext(ctx, query,
		sessionID,
		node.URL,
		node.Depth,
		node.Parent,
		node.Status.String(),
		node.Reason,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert node: %w", err)
	}
	return nil
}

// UpsertDocument records the content fields for one fetched URL.
// Tree fields written by UpsertNode are left untouched.
func (sdb *SessionDB) UpsertDocument(ctx context.Context, rec *DocumentRecord) error {
	query := `
	INSERT INTO documents (session_id, url, depth, title, relative_path, content_length, crawled_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id, url) DO UPDATE SET
		title = excluded.title,
		relative_path = excluded.relative_path,
		content_length = excluded.content_length,
		crawled_at = excluded.crawled_at
	`

	_, err := sdb.db.ExecContext(ctx, query,
		rec.SessionID,
		rec.URL,
		rec.Depth,
		rec.Title,
		rec.RelativePath,
		rec.ContentLength,
		rec.CrawledAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

// ListDocuments returns every document of a session in insertion order.
func (sdb *SessionDB) ListDocuments(ctx context.Context, sessionID string) ([]DocumentRecord, error) {
	query := `
	SELECT id, session_id, url, depth, parent, status, reason,
		title, relative_path, content_length, crawled_at
	FROM documents
	WHERE session_id = ?
	ORDER BY id
	`

	rows, err := sdb.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var records []DocumentRecord
	for rows.Next() {
		var rec DocumentRecord
		var parent, status, reason, title, relativePath, crawledAt sql.NullString

		err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.URL,
			&rec.Depth,
			&parent,
			&status,
			&reason,
			&title,
			&relativePath,
			&rec.ContentLength,
			&crawledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		rec.Parent = parent.String
		rec.Status = status.String
		rec.Reason = reason.String
		rec.Title = title.String
		rec.RelativePath = relativePath.String
		if crawledAt.Valid && crawledAt.String != "" {
			rec.CrawledAt = parseTimestamp(crawledAt.String)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// timestampFormats lists the layouts SQLite may hand back depending on
// how a timestamp column was written.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05-07:00",
}

// parseTimestamp tries each known layout and returns the zero time when
// none matches.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
