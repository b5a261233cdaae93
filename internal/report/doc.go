// Package report renders crawl session summaries.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown with tables and a mermaid chart
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter for multi-format output.
// The summary data itself lives in the model package.
package report
