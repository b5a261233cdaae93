package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/devoperand/crawl4ai-scraper/internal/model"
)

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display.
//
// Plain text with ASCII formatting rather than ANSI colors: it works in
// all terminals and pipes cleanly to files and other tools.
type SimpleWriter struct {
	baseWriter

	// verbose enables the per-URL failure list in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with the per-URL failure list.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(sum *model.SessionSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, sum)
	w.writeDiscovery(&sb, sum)
	w.writeOutput(&sb, sum)
	w.writeFailures(&sb, sum)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the session information block.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, sum *model.SessionSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Session:   %s\n", sum.ID))
	for i, seed := range sum.Seeds {
		label := "Seeds:  "
		if i > 0 {
			label = "        "
		}
		sb.WriteString(fmt.Sprintf("%s   %s\n", label, seed))
	}
	sb.WriteString(fmt.Sprintf("Started:   %s\n", sum.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:  %.1fs\n", sum.ElapsedSeconds))

	switch {
	case sum.Aborted:
		sb.WriteString(fmt.Sprintf("Status:    ABORTED - %s (partial results)\n", sum.AbortReason))
	case sum.DryRun:
		sb.WriteString("Status:    Dry run (no files written)\n")
	default:
		sb.WriteString("Status:    Complete\n")
	}
	sb.WriteString("\n")
}

// writeDiscovery writes the per-status counts.
func (w *SimpleWriter) writeDiscovery(sb *strings.Builder, sum *model.SessionSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("DISCOVERY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  DISCOVERED: %d\n", sum.TotalDiscovered))
	sb.WriteString(fmt.Sprintf("  FETCHED:    %d\n", sum.Fetched))
	sb.WriteString(fmt.Sprintf("  MATCHED:    %d\n", sum.Matched))
	sb.WriteString(fmt.Sprintf("  REJECTED:   %d\n", sum.Rejected))
	sb.WriteString(fmt.Sprintf("  FAILED:     %d\n", sum.Failed))
	sb.WriteString("\n")
}

// writeOutput writes the write statistics. Dry runs have none.
func (w *SimpleWriter) writeOutput(sb *strings.Builder, sum *model.SessionSummary) {
	if sum.DryRun {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("OUTPUT\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Directory:      %s\n", sum.OutputRoot))
	sb.WriteString(fmt.Sprintf("  Strategy:       %s / %s\n", sum.Strategy, sum.Naming))
	sb.WriteString(fmt.Sprintf("  Written:        %d\n", sum.Written))
	sb.WriteString(fmt.Sprintf("  Write failures: %d\n", sum.WriteFailures))
	sb.WriteString(fmt.Sprintf("  Content bytes:  %d\n", sum.TotalContentLength))
	sb.WriteString("\n")
}

// writeFailures writes the per-URL failure list in verbose mode.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, sum *model.SessionSummary) {
	if !w.verbose || len(sum.FailedURLs) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILED URLS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, f := range sum.FailedURLs {
		sb.WriteString(fmt.Sprintf("  [!] %s\n", f.URL))
		sb.WriteString(fmt.Sprintf("      %s\n", f.Reason))
	}
	sb.WriteString("\n")
}
