package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devoperand/crawl4ai-scraper/internal/config"
	"github.com/devoperand/crawl4ai-scraper/internal/database"
	"github.com/devoperand/crawl4ai-scraper/internal/report"
)

// NewSessionsCmd creates the sessions command.
func NewSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions [session-id]",
		Short: "List past crawl sessions or show one session's report",
		Long: `Sessions lists the crawl history stored in the local database.
Without arguments it prints one line per past session. With a session ID
it prints that session's full report.

Examples:
  # List all past sessions
  crawl4ai-scraper sessions

  # Show one session's report
  crawl4ai-scraper sessions 2f1c9e9a-7b2d-4c41-9c70-8f6f2a6f3b11

  # Same report as JSON
  crawl4ai-scraper sessions 2f1c9e9a-7b2d-4c41-9c70-8f6f2a6f3b11 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSessionsCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output the session report as JSON")
	cmd.Flags().String("db-dir", "", "Database directory (default: XDG data directory)")

	return cmd
}

// runSessionsCmd executes the sessions command.
func runSessionsCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("no crawl history found in %s: %w", dbDir, err)
	}
	defer db.Close()

	if len(args) == 0 {
		return listSessions(cmd, db)
	}
	return showSession(cmd, db, args[0])
}

// listSessions prints one line per stored session, most recent first.
func listSessions(cmd *cobra.Command, db *database.SessionDB) error {
	records, err := db.ListSessions(cmd.Context())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSEEDS\tDISCOVERED\tFETCHED\tWRITTEN\tMODE")
	for _, rec := range records {
		mode := "crawl"
		switch {
		case rec.DryRun:
			mode = "dry-run"
		case rec.Aborted:
			mode = "aborted"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			rec.ID,
			rec.StartedAt.Format("2006-01-02 15:04"),
			strings.Join(rec.Seeds, ", "),
			rec.TotalDiscovered,
			rec.Fetched,
			rec.Written,
			mode,
		)
	}
	return w.Flush()
}

// showSession prints the full report for one stored session.
func showSession(cmd *cobra.Command, db *database.SessionDB, id string) error {
	sum, err := db.GetSession(cmd.Context(), id)
	if err != nil {
		return err
	}
	if sum == nil {
		return fmt.Errorf("session not found: %s", id)
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	var writer report.Writer
	if asJSON {
		writer = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint())
	} else {
		writer = report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(true))
	}
	_, err = writer.Write(sum)
	return err
}
