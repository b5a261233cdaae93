package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for crawl4ai-scraper.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl4ai-scraper",
		Short: "Scoped web crawler that organizes pages as Markdown",
		Long: `crawl4ai-scraper crawls websites breadth-first within an operator-defined
URL scope and writes each page as a Markdown document with YAML metadata.

Wildcard patterns (*, **, ?) select which discovered links are followed,
and placement strategies decide how the output tree is organized.
Use "discover" for a dry run that enumerates links without writing files.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewDiscoverCmd())
	cmd.AddCommand(NewSessionsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
