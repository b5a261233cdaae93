package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/devoperand/crawl4ai-scraper/internal/model"
)

// MarkdownWriter outputs session summaries in Markdown format, for
// documentation and sharing.
//
// We use the nao1215/markdown library for fluent, type-safe markdown
// generation with tables, alerts, and mermaid charts.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(sum *model.SessionSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, sum)
	w.writeDiscovery(md, sum)
	w.writeOutput(md, sum)
	w.writeFailures(md, sum)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the session information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, sum *model.SessionSummary) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Session", "`" + sum.ID + "`"},
			{"Seeds", strings.Join(sum.Seeds, "<br>")},
			{"Started", sum.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", sum.Duration().Round(10 * time.Millisecond).String()},
			{"Status", statusText(sum)},
		},
	})
	md.PlainText("")
}

// writeDiscovery writes the per-status counts and their distribution.
func (w *MarkdownWriter) writeDiscovery(md *markdown.Markdown, sum *model.SessionSummary) {
	md.H2("Discovery")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count"},
		Rows: [][]string{
			{"Discovered", strconv.Itoa(sum.TotalDiscovered)},
			{"Fetched", strconv.Itoa(sum.Fetched)},
			{"Matched (not fetched)", strconv.Itoa(sum.Matched)},
			{"Rejected", strconv.Itoa(sum.Rejected)},
			{"Failed", strconv.Itoa(sum.Failed)},
		},
	})
	md.PlainText("")

	if sum.TotalDiscovered > 0 {
		w.writePieChart(md, sum)
	}

	switch {
	case sum.Aborted:
		md.Cautionf("Session aborted: %s. Counts describe the partial crawl.", sum.AbortReason)
	case sum.Failed > 0:
		md.Warningf("%d page(s) failed. See the failed URLs below.", sum.Failed)
	default:
		md.Tip("All selected pages crawled cleanly.")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of the status distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, sum *model.SessionSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Discovered URL Outcomes"),
		piechart.WithShowData(true),
	)

	if sum.Fetched > 0 {
		chart.LabelAndIntValue("Fetched", uint64(sum.Fetched))
	}
	if sum.Matched > 0 {
		chart.LabelAndIntValue("Matched", uint64(sum.Matched))
	}
	if sum.Rejected > 0 {
		chart.LabelAndIntValue("Rejected", uint64(sum.Rejected))
	}
	if sum.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(sum.Failed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeOutput writes the write statistics. Dry runs produce no output
// section.
func (w *MarkdownWriter) writeOutput(md *markdown.Markdown, sum *model.SessionSummary) {
	if sum.DryRun {
		return
	}

	md.H2("Output")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Directory", "`" + sum.OutputRoot + "`"},
			{"Strategy", sum.Strategy},
			{"Naming", sum.Naming},
			{"Written", strconv.Itoa(sum.Written)},
			{"Write failures", strconv.Itoa(sum.WriteFailures)},
			{"Content bytes", strconv.FormatInt(sum.TotalContentLength, 10)},
		},
	})
	md.PlainText("")
}

// writeFailures writes the failed URL table.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, sum *model.SessionSummary) {
	if len(sum.FailedURLs) == 0 {
		return
	}

	md.H2("Failed URLs")
	md.PlainText("")

	rows := make([][]string, len(sum.FailedURLs))
	for i, f := range sum.FailedURLs {
		rows[i] = []string{
			truncateString(f.URL, 60),
			truncateString(f.Reason, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [crawl4ai-scraper](https://github.com/devoperand/crawl4ai-scraper)*")
}

// statusText describes the session outcome in one line.
func statusText(sum *model.SessionSummary) string {
	switch {
	case sum.Aborted:
		return "⚠️ Aborted - " + sum.AbortReason
	case sum.DryRun:
		return "Dry run"
	default:
		return "✅ Complete"
	}
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
