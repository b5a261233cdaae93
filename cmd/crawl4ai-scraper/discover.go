package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/devoperand/crawl4ai-scraper/internal/config"
	"github.com/devoperand/crawl4ai-scraper/internal/database"
	"github.com/devoperand/crawl4ai-scraper/internal/discover"
	"github.com/devoperand/crawl4ai-scraper/internal/engine"
	"github.com/devoperand/crawl4ai-scraper/internal/log"
	"github.com/devoperand/crawl4ai-scraper/internal/model"
	"github.com/devoperand/crawl4ai-scraper/internal/output"
	"github.com/devoperand/crawl4ai-scraper/internal/pattern"
)

// previewLimit caps how many placement previews the dry run prints.
const previewLimit = 10

// NewDiscoverCmd creates the discover command.
func NewDiscoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover [seed-url...]",
		Short: "Dry run: enumerate in-scope links without writing files",
		Long: `Discover walks a site exactly like crawl — same breadth-first order,
same patterns, same budgets — but retrieves no page content and writes
nothing to the output directory. It prints the URLs that a real crawl
would fetch, plus a preview of where the first few documents would land.

Use it to tune --include/--exclude patterns before committing to a crawl.

Examples:
  # Preview what a crawl of the guide section would fetch
  crawl4ai-scraper discover https://docs.example.com/ --include "**/guide/**"

  # Check how the mirror strategy would lay files out
  crawl4ai-scraper discover https://docs.example.com/ -s mirror -p 20`,
		Args: cobra.ArbitraryArgs,
		RunE: runDiscoverCmd,
	}

	addCrawlFlags(cmd)

	return cmd
}

// runDiscoverCmd executes the discover command.
func runDiscoverCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	cfg.DryRun = true

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runDiscover(ctx, cfg, logger)
}

// runDiscover executes one dry-run session and prints its outcome.
func runDiscover(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	matcher, err := pattern.Compile(cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	eng, err := engine.New(nil,
		engine.WithTimeout(cfg.Timeout),
		engine.WithRequestDelay(cfg.RequestDelay),
		engine.WithMaxBodySize(cfg.MaxBodySize),
		engine.WithUserAgent(cfg.UserAgent),
		engine.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create fetch engine: %w", err)
	}

	controller := discover.NewController(eng, matcher,
		discover.WithSessionID(uuid.NewString()),
		discover.WithMaxPages(cfg.MaxPages),
		discover.WithMaxDepth(cfg.MaxDepth),
		discover.WithConcurrency(cfg.Concurrency),
		discover.WithIncludeExternal(cfg.IncludeExternal),
		discover.WithLogger(logger),
	)

	fmt.Printf("Discovering from %d seed(s) (dry run)...\n", len(cfg.Seeds))
	startTime := time.Now()

	session, runErr := controller.Run(ctx, cfg.Seeds)
	if session == nil {
		return runErr
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Discovery completed in %s\n\n", elapsed.Round(time.Millisecond))

	sum := session.Summarize()
	sum.DryRun = true
	sum.OutputRoot = ""
	sum.Strategy = cfg.Strategy
	sum.Naming = cfg.Naming
	if runErr != nil {
		sum.Aborted = true
		sum.AbortReason = runErr.Error()
	}

	printDiscovery(os.Stdout, cfg, session, sum)

	if cfg.SaveToDB {
		if db, err := database.Open(cfg.DBDir, database.DefaultOptions()); err != nil {
			logger.Error("failed to open history database", "error", err)
		} else {
			defer db.Close()
			if err := saveHistory(ctx, db, session, sum, logger); err != nil {
				logger.Error("failed to save session history", "error", err)
			}
		}
	}

	return runErr
}

// printDiscovery writes the dry-run listing: counts, the URLs a crawl
// would fetch, and a placement preview.
func printDiscovery(w *os.File, cfg *config.Config, session *discover.Session, sum *model.SessionSummary) {
	fmt.Fprintf(w, "Discovered: %d  Would fetch: %d  Rejected: %d  Failed: %d\n\n",
		sum.TotalDiscovered, sum.Fetched+sum.Matched, sum.Rejected, sum.Failed)

	var fetched []model.DiscoveredURL
	for _, node := range session.Nodes() {
		if node.Status == model.StatusFetched || node.Status == model.StatusMatched {
			fetched = append(fetched, node)
		}
	}

	if len(fetched) == 0 {
		fmt.Fprintln(w, "No URLs in scope. Loosen --include or raise --max-depth.")
		return
	}

	fmt.Fprintln(w, "URLs a crawl would fetch:")
	for _, node := range fetched {
		fmt.Fprintf(w, "  [depth %d] %s\n", node.Depth, node.URL)
	}

	previewPlacements(w, cfg, fetched)
}

// previewPlacements shows where the first few documents would be
// written. The organizer only computes paths here; nothing touches disk.
func previewPlacements(w *os.File, cfg *config.Config, fetched []model.DiscoveredURL) {
	organizer, err := output.NewOrganizer(cfg.OutputRoot, cfg.Strategy, cfg.Naming,
		output.WithTemplate(cfg.PathTemplate))
	if err != nil {
		return
	}

	limit := len(fetched)
	if limit > previewLimit {
		limit = previewLimit
	}

	fmt.Fprintf(w, "\nPlacement preview (%s/%s):\n", cfg.Strategy, cfg.Naming)
	for _, node := range fetched[:limit] {
		doc := &model.CrawledDocument{URL: node.URL, Depth: node.Depth}
		placement, err := organizer.Place(doc)
		if err != nil {
			fmt.Fprintf(w, "  %s -> (error: %v)\n", node.URL, err)
			continue
		}
		fmt.Fprintf(w, "  %s -> %s\n", node.URL, placement.RelativePath)
	}
	if len(fetched) > limit {
		fmt.Fprintf(w, "  ... and %d more\n", len(fetched)-limit)
	}
}
