package pipeline

import (
	"context"
	"fmt"

	"github.com/devoperand/crawl4ai-scraper/internal/database"
	"github.com/devoperand/crawl4ai-scraper/internal/model"
	"github.com/devoperand/crawl4ai-scraper/internal/output"
)

// ContentFetcher fetches one page and extracts its content.
// *engine.Engine satisfies this.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (*model.CrawledDocument, error)
}

// FetchStep downloads a page and extracts its content into the job.
type FetchStep struct {
	fetcher ContentFetcher
}

// NewFetchStep creates a fetch step backed by fetcher.
func NewFetchStep(fetcher ContentFetcher) *FetchStep {
	return &FetchStep{fetcher: fetcher}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch_content"
}

// Do fetches and extracts the job's URL.
func (s *FetchStep) Do(ctx context.Context, job *Job) error {
	doc, err := s.fetcher.FetchContent(ctx, job.URL)
	if err != nil {
		return fmt.Errorf("fetch content: %w", err)
	}
	doc.Depth = job.Depth
	job.Document = doc
	return nil
}

// OrganizeStep places the extracted document under the output root and
// writes it to disk.
type OrganizeStep struct {
	organizer *output.Organizer
}

// NewOrganizeStep creates an organize step backed by organizer.
func NewOrganizeStep(organizer *output.Organizer) *OrganizeStep {
	return &OrganizeStep{organizer: organizer}
}

// Name returns the step name.
func (s *OrganizeStep) Name() string {
	return "organize"
}

// Do computes the placement and writes the document.
func (s *OrganizeStep) Do(ctx context.Context, job *Job) error {
	placement, err := s.organizer.Place(job.Document)
	if err != nil {
		return fmt.Errorf("place document: %w", err)
	}
	job.Placement = placement

	if err := s.organizer.Write(job.Document, placement); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// DocumentStore persists per-document crawl results.
// *database.SessionDB satisfies this.
type DocumentStore interface {
	UpsertDocument(ctx context.Context, rec *database.DocumentRecord) error
}

// StoreStep records the processed document in the session history
// database. It writes only the content column group; the discovery tree
// columns are written by the post-run node sweep.
type StoreStep struct {
	store     DocumentStore
	sessionID string
}

// NewStoreStep creates a store step writing under sessionID.
func NewStoreStep(store DocumentStore, sessionID string) *StoreStep {
	return &StoreStep{store: store, sessionID: sessionID}
}

// Name returns the step name.
func (s *StoreStep) Name() string {
	return "store_history"
}

// Do records the job's document and placement.
func (s *StoreStep) Do(ctx context.Context, job *Job) error {
	rec := &database.DocumentRecord{
		SessionID:     s.sessionID,
		URL:           job.URL,
		Depth:         job.Depth,
		Title:         job.Document.Title,
		ContentLength: job.Document.Extraction.ContentLength,
		CrawledAt:     job.Document.Extraction.CrawledAt,
	}
	if job.Placement != nil {
		rec.RelativePath = job.Placement.RelativePath
	}

	if err := s.store.UpsertDocument(ctx, rec); err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	return nil
}
