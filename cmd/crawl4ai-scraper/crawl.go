package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
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
	"github.com/devoperand/crawl4ai-scraper/internal/pipeline"
	"github.com/devoperand/crawl4ai-scraper/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl a site and write each page as Markdown",
		Long: `Crawl discovers pages breadth-first from the seed URLs, fetches every
page within scope, and writes each one as a Markdown document with YAML
front matter under the output directory.

Seeds are always fetched; --include and --exclude patterns scope the
links followed from them. Patterns support * (one path segment),
** (any depth), and ? (one character).

Examples:
  # Crawl the guide section of a documentation site
  crawl4ai-scraper crawl https://docs.example.com/ --include "**/guide/**"

  # Mirror a site's structure with at most 100 pages
  crawl4ai-scraper crawl https://docs.example.com/ -p 100 -s mirror

  # Group output by crawl date, name files by title
  crawl4ai-scraper crawl https://example.com/blog/ -s date_organized --naming title_based

  # Custom layout from a path template
  crawl4ai-scraper crawl https://docs.example.com/ -s custom_pattern --template "{host}/{date}"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	addCrawlFlags(cmd)

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().String("report-file", "",
		"Write the session report to this path instead of stdout")
	cmd.Flags().Bool("no-db", false,
		"Skip saving the session to the history database")

	return cmd
}

// addCrawlFlags registers the flags shared by crawl and discover.
func addCrawlFlags(cmd *cobra.Command) {
	// Scope flags
	cmd.Flags().StringSliceP("include", "i", nil,
		"Wildcard pattern a link must match to be followed (repeatable)")
	cmd.Flags().StringSliceP("exclude", "e", nil,
		"Wildcard pattern that removes a link from scope (repeatable)")
	cmd.Flags().Bool("include-external", false,
		"Follow links to hosts other than the seed hosts")

	// Budget flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum pages to match and fetch per session (0 = unbounded)")
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Maximum link depth from the seeds")

	// Politeness flags
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		fmt.Sprintf("Simultaneous fetches (1-%d)", config.MaxConcurrency))
	cmd.Flags().Duration("delay", config.DefaultRequestDelay,
		"Delay between requests")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request timeout")
	cmd.Flags().String("user-agent", "",
		"Fixed User-Agent header (default: rotate browser agents)")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputRoot,
		"Directory documents are written under")
	cmd.Flags().StringP("strategy", "s", config.DefaultStrategy,
		fmt.Sprintf("Placement strategy: %v", model.Strategies()))
	cmd.Flags().String("naming", config.DefaultNaming,
		fmt.Sprintf("Filename convention: %v", model.Namings()))
	cmd.Flags().String("template", "",
		"Path template for custom_pattern ({host}, {path}, {date}, {title})")

	// Extraction flags
	cmd.Flags().String("extraction", config.DefaultExtraction,
		"Extraction method: css, xpath, or auto")
	cmd.Flags().String("selector", "",
		"CSS selector list or XPath expression for css/xpath extraction")
	cmd.Flags().String("cleaning", config.DefaultCleaningProfile,
		"Cleaning profile: strict, moderate, or minimal")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .crawl4ai-scraper in current or home directory)")
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the optional
// configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Seeds = args
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	if cfg.IncludePatterns, err = cmd.Flags().GetStringSlice("include"); err != nil {
		return nil, err
	}
	if cfg.ExcludePatterns, err = cmd.Flags().GetStringSlice("exclude"); err != nil {
		return nil, err
	}
	if cfg.IncludeExternal, err = cmd.Flags().GetBool("include-external"); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.MaxDepth, err = cmd.Flags().GetInt("max-depth"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.RequestDelay, err = cmd.Flags().GetDuration("delay"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.OutputRoot, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.Strategy, err = cmd.Flags().GetString("strategy"); err != nil {
		return nil, err
	}
	if cfg.Naming, err = cmd.Flags().GetString("naming"); err != nil {
		return nil, err
	}
	if cfg.PathTemplate, err = cmd.Flags().GetString("template"); err != nil {
		return nil, err
	}
	if cfg.Extraction, err = cmd.Flags().GetString("extraction"); err != nil {
		return nil, err
	}
	if cfg.Selector, err = cmd.Flags().GetString("selector"); err != nil {
		return nil, err
	}
	if cfg.CleaningProfile, err = cmd.Flags().GetString("cleaning"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}

	// Report flags exist on crawl only.
	if cmd.Flags().Lookup("json") != nil {
		if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
			return nil, err
		}
		if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
			return nil, err
		}
		if cfg.ReportFile, err = cmd.Flags().GetString("report-file"); err != nil {
			return nil, err
		}
	}

	// Load per-host configurations. An explicitly given file must exist;
	// an absent default file just means no overrides.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	applySiteConfig(cfg)

	// Save to the XDG data directory unless --no-db was given.
	cfg.SaveToDB = true
	if cmd.Flags().Lookup("no-db") != nil {
		noDB, err := cmd.Flags().GetBool("no-db")
		if err != nil {
			return nil, err
		}
		cfg.SaveToDB = !noDB
	}
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// applySiteConfig folds the first seed host's file configuration into
// cfg. CLI flags changed from their defaults keep priority over the
// file; the file keeps priority over built-in defaults.
func applySiteConfig(cfg *config.Config) {
	if cfg.SiteConfigs == nil || len(cfg.Seeds) == 0 {
		return
	}
	u, err := url.Parse(cfg.Seeds[0])
	if err != nil {
		return
	}
	site := cfg.SiteConfigs.GetSiteConfig(u.Hostname())

	if len(cfg.IncludePatterns) == 0 && len(site.IncludePatterns) > 0 {
		cfg.IncludePatterns = site.IncludePatterns
	}
	if len(cfg.ExcludePatterns) == 0 && len(site.ExcludePatterns) > 0 {
		cfg.ExcludePatterns = site.ExcludePatterns
	}
	if cfg.MaxDepth == config.DefaultMaxDepth && site.MaxDepth > 0 {
		cfg.MaxDepth = site.MaxDepth
	}
	if cfg.MaxPages == config.DefaultMaxPages && site.MaxPages != 0 {
		if site.MaxPages < 0 {
			cfg.MaxPages = 0 // -1 in the file means unbounded
		} else {
			cfg.MaxPages = site.MaxPages
		}
	}
	if cfg.RequestDelay == config.DefaultRequestDelay && site.RequestDelay > 0 {
		cfg.RequestDelay = time.Duration(site.RequestDelay * float64(time.Second))
	}
	if cfg.Selector == "" && site.Selector != "" {
		cfg.Selector = site.Selector
	}
	if cfg.CleaningProfile == config.DefaultCleaningProfile && site.CleaningProfile != "" {
		cfg.CleaningProfile = site.CleaningProfile
	}
}

// runCrawl executes one crawl session: discovery, the content pipeline,
// the report, and the history database.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	matcher, err := pattern.Compile(cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}

	eng, err := engine.New(nil,
		engine.WithTimeout(cfg.Timeout),
		engine.WithRequestDelay(cfg.RequestDelay),
		engine.WithMaxBodySize(cfg.MaxBodySize),
		engine.WithUserAgent(cfg.UserAgent),
		engine.WithExtraction(cfg.Extraction, cfg.Selector, cfg.CleaningProfile),
		engine.WithLogger(logger),
	)
	if err != nil {
		// Engine construction failure is session-fatal: nothing can be
		// fetched without it.
		return fmt.Errorf("failed to create fetch engine: %w", err)
	}

	organizer, err := output.NewOrganizer(cfg.OutputRoot, cfg.Strategy, cfg.Naming,
		output.WithTemplate(cfg.PathTemplate))
	if err != nil {
		return fmt.Errorf("failed to create output organizer: %w", err)
	}

	var db *database.SessionDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		logger.Info("history database opened", "dir", cfg.DBDir)
	}

	sessionID := uuid.NewString()

	// Content-phase failures are folded into the session after discovery
	// finishes; applying them later keeps discovery's page selection
	// independent of content outcomes.
	var failMu sync.Mutex
	contentFailures := make(map[string]string)

	processor := pipeline.New(
		pipeline.WithLogger(logger),
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithOnError(func(job *pipeline.Job, err error) {
			failMu.Lock()
			contentFailures[job.URL] = err.Error()
			failMu.Unlock()
		}),
	)
	processor.AddSteps(
		pipeline.NewFetchStep(eng),
		pipeline.NewOrganizeStep(organizer),
	)
	if db != nil {
		processor.AddStep(pipeline.NewStoreStep(db, sessionID))
	}

	controller := discover.NewController(eng, matcher,
		discover.WithSessionID(sessionID),
		discover.WithMaxPages(cfg.MaxPages),
		discover.WithMaxDepth(cfg.MaxDepth),
		discover.WithConcurrency(cfg.Concurrency),
		discover.WithIncludeExternal(cfg.IncludeExternal),
		discover.WithLogger(logger),
		discover.WithOnFetched(func(url string, depth int) {
			processor.Submit(url, depth)
		}),
	)

	fmt.Printf("Crawling %d seed(s)...\n", len(cfg.Seeds))
	startTime := time.Now()

	processor.Start(ctx)
	session, runErr := controller.Run(ctx, cfg.Seeds)
	if session == nil {
		return runErr
	}
	if err := processor.Wait(); err != nil {
		logger.Error("content pipeline error", "error", err)
	}

	failMu.Lock()
	for url, reason := range contentFailures {
		session.MarkContentFailed(url, reason)
	}
	failMu.Unlock()

	elapsed := time.Since(startTime)
	fmt.Printf("Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

	sum := session.Summarize()
	if runErr != nil {
		sum.Aborted = true
		sum.AbortReason = runErr.Error()
	}

	// WriteSummary stamps the write statistics and output policy onto the
	// summary before persisting it anywhere else.
	if err := organizer.WriteSummary(sum); err != nil {
		logger.Error("failed to write crawl summary", "error", err)
	}

	if err := outputReport(cfg, sum); err != nil {
		logger.Error("report failed", "error", err)
	}

	if db != nil {
		if err := saveHistory(ctx, db, session, sum, logger); err != nil {
			logger.Error("failed to save session history", "error", err)
		}
	}

	return runErr
}

// outputReport writes the session report in the requested format.
func outputReport(cfg *config.Config, sum *model.SessionSummary) error {
	var out *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		out = f
	} else {
		out = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(out, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(out)
	default:
		writer = report.NewSimpleWriter(out, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(sum)
	return err
}

// saveHistory persists the session summary and the discovery tree.
// The content column group of each document row was already written by
// the pipeline's store step.
func saveHistory(ctx context.Context, db *database.SessionDB, session *discover.Session, sum *model.SessionSummary, logger *slog.Logger) error {
	// History persistence should survive the crawl's own cancellation.
	if errors.Is(ctx.Err(), context.Canceled) {
		ctx = context.WithoutCancel(ctx)
	}

	if err := db.SaveSession(ctx, sum); err != nil {
		return err
	}
	for _, node := range session.Nodes() {
		if err := db.UpsertNode(ctx, session.ID(), node); err != nil {
			return err
		}
	}

	logger.Info("session saved", "session", session.ID(), "documents", session.Len())
	return nil
}
