package database

import (
	"context"
	"testing"
	"time"

	"github.com/devoperand/crawl4ai-scraper/internal/model"
)

func openTestDB(t *testing.T) *SessionDB {
	t.Helper()

	sdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := sdb.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return sdb
}

// TestOpenWithoutCreate tests that a missing database is an error when
// creation is disabled.
func TestOpenWithoutCreate(t *testing.T) {
	t.Parallel()

	_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
	if err == nil {
		t.Fatal("Open() should fail when the database doesn't exist")
	}
}

// TestSaveSession tests the save, list, and get round trip, including
// the upsert on re-save.
func TestSaveSession(t *testing.T) {
	t.Parallel()

	sdb := openTestDB(t)
	ctx := context.Background()

	sum := &model.SessionSummary{
		ID:              "session-1",
		Seeds:           []string{"https://docs.example.com/"},
		StartedAt:       time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
		TotalDiscovered: 7,
		Fetched:         5,
		Strategy:        model.StrategyMirror,
		Naming:          model.NamingURLBased,
		OutputRoot:      "/tmp/out",
	}
	if err := sdb.SaveSession(ctx, sum); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}

	// Re-save after the output phase updated the write counts.
	sum.Written = 5
	if err := sdb.SaveSession(ctx, sum); err != nil {
		t.Fatalf("SaveSession() upsert error = %v", err)
	}

	records, err := sdb.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("ListSessions() returned %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.ID != "session-1" || rec.Fetched != 5 || rec.Written != 5 {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.Seeds) != 1 || rec.Seeds[0] != "https://docs.example.com/" {
		t.Errorf("seeds = %v", rec.Seeds)
	}
	if !rec.StartedAt.Equal(sum.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", rec.StartedAt, sum.StartedAt)
	}

	got, err := sdb.GetSession(ctx, "session-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got == nil || got.ID != sum.ID || got.Written != 5 || got.Strategy != model.StrategyMirror {
		t.Errorf("GetSession() = %+v", got)
	}
}

// TestGetSessionMissing tests the nil-without-error contract.
func TestGetSessionMissing(t *testing.T) {
	t.Parallel()

	sdb := openTestDB(t)

	got, err := sdb.GetSession(context.Background(), "no-such-session")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetSession() = %+v, want nil for a missing session", got)
	}
}

// TestUpsertNodeAndDocument tests that the two column groups of one
// document row don't overwrite each other regardless of write order.
func TestUpsertNodeAndDocument(t *testing.T) {
	t.Parallel()

	sdb := openTestDB(t)
	ctx := context.Background()
	crawledAt := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	// Content row lands first (the pipeline finished before the
	// post-run tree sweep).
	err := sdb.UpsertDocument(ctx, &DocumentRecord{
		SessionID:     "s1",
		URL:           "https://a.com/x",
		Depth:         1,
		Title:         "X Page",
		RelativePath:  "a.com/x.md",
		ContentLength: 42,
		CrawledAt:     crawledAt,
	})
	if err != nil {
		t.Fatalf("UpsertDocument() error = %v", err)
	}

	err = sdb.UpsertNode(ctx, "s1", model.DiscoveredURL{
		URL:    "https://a.com/x",
		Depth:  1,
		Parent: "https://a.com/",
		Status: model.StatusFetched,
	})
	if err != nil {
		t.Fatalf("UpsertNode() error = %v", err)
	}

	docs, err := sdb.ListDocuments(ctx, "s1")
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("ListDocuments() returned %d rows, want 1", len(docs))
	}

	doc := docs[0]
	if doc.Title != "X Page" || doc.RelativePath != "a.com/x.md" || doc.ContentLength != 42 {
		t.Errorf("content fields lost: %+v", doc)
	}
	if doc.Parent != "https://a.com/" || doc.Status != "fetched" {
		t.Errorf("tree fields lost: %+v", doc)
	}
	if !doc.CrawledAt.Equal(crawledAt) {
		t.Errorf("CrawledAt = %v, want %v", doc.CrawledAt, crawledAt)
	}
}

// TestListDocumentsBySession tests session isolation.
func TestListDocumentsBySession(t *testing.T) {
	t.Parallel()

	sdb := openTestDB(t)
	ctx := context.Background()

	for _, s := range []struct{ session, url string }{
		{"s1", "https://a.com/"},
		{"s1", "https://a.com/x"},
		{"s2", "https://b.com/"},
	} {
		err := sdb.UpsertNode(ctx, s.session, model.DiscoveredURL{
			URL:    s.url,
			Status: model.StatusFetched,
		})
		if err != nil {
			t.Fatalf("UpsertNode() error = %v", err)
		}
	}

	docs, err := sdb.ListDocuments(ctx, "s1")
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("ListDocuments(s1) returned %d rows, want 2", len(docs))
	}
}
