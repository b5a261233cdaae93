// Package main provides the entry point for the crawl4ai-scraper CLI.
//
// crawl4ai-scraper crawls websites within operator-defined URL scopes
// and organizes the extracted content as Markdown files on disk.
//
// Usage:
//
//	crawl4ai-scraper crawl https://docs.example.com/ --include "**/guide/**"
//	crawl4ai-scraper discover https://docs.example.com/
//
// See --help for all available options.
package main

// main is the entry point for crawl4ai-scraper.
func main() {
	Execute()
}
