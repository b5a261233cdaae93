package model

import "time"

// FailedURL records one per-node failure and its cause.
type FailedURL struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// SessionSummary aggregates the outcome of one crawl session.
// A session always produces a summary, including aborted sessions,
// so operators can see how far a run got.
type SessionSummary struct {
	// ID uniquely identifies the session.
	ID string `json:"id"`

	// Seeds are the normalized starting URLs in operator order.
	Seeds []string `json:"seeds"`

	// StartedAt and FinishedAt bound the session wall-clock time.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// ElapsedSeconds is FinishedAt minus StartedAt, for the summary file.
	ElapsedSeconds float64 `json:"elapsed_seconds"`

	// Node counts by final status.
	TotalDiscovered int `json:"total_discovered"`
	Matched         int `json:"matched"`
	Fetched         int `json:"fetched"`
	Failed          int `json:"failed"`
	Rejected        int `json:"rejected"`

	// Written counts documents successfully placed on disk, and
	// WriteFailures counts documents whose placement or write failed.
	Written       int `json:"written"`
	WriteFailures int `json:"write_failures"`

	// TotalContentLength sums the extracted byte length of written documents.
	TotalContentLength int64 `json:"total_content_length"`

	// Strategy and Naming are the output policies the session ran with.
	Strategy string `json:"strategy"`
	Naming   string `json:"naming"`

	// OutputRoot is the directory documents were written under.
	// Empty for dry runs.
	OutputRoot string `json:"output_directory,omitempty"`

	// DryRun marks link-enumeration-only sessions.
	DryRun bool `json:"dry_run,omitempty"`

	// Aborted marks sessions terminated by a fatal condition. The
	// counts above still describe the partial tree.
	Aborted     bool   `json:"aborted,omitempty"`
	AbortReason string `json:"abort_reason,omitempty"`

	// FailedURLs lists per-node failures with their causes.
	FailedURLs []FailedURL `json:"failed_urls,omitempty"`
}

// Finalize stamps the end time and derives the elapsed duration.
func (s *SessionSummary) Finalize(now time.Time) {
	s.FinishedAt = now
	s.ElapsedSeconds = now.Sub(s.StartedAt).Seconds()
}

// Duration returns the session wall-clock duration.
func (s *SessionSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
