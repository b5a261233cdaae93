package report

import (
	"io"

	"github.com/devoperand/crawl4ai-scraper/internal/model"
)

// Writer defines the interface for session report output.
// Implementations render a crawl session summary in various formats.
type Writer interface {
	// Write outputs the summary to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(sum *model.SessionSummary) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously, for outputting
// to both terminal and file.
//
// We don't use io.MultiWriter because our Writer interface writes
// summaries, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
// Returns the total bytes written; stops on first error encountered.
func (m *MultiWriter) Write(sum *model.SessionSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(sum)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
