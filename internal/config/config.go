package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/devoperand/crawl4ai-scraper/internal/model"
)

// Default configuration values. These mirror the defaults of the
// interactive scraper this tool grew out of: small budgets that keep a
// first crawl quick and polite, overridable per run via CLI flags or the
// configuration file.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "crawl4ai-scraper"

	// DefaultMaxPages bounds how many pages one session may match and
	// fetch. 50 keeps an unscoped first run from swallowing a whole
	// documentation site. Zero disables the bound entirely.
	DefaultMaxPages = 50

	// DefaultMaxDepth is the hop distance from the seeds that discovery
	// will follow. Two hops reach most section and article pages of a
	// documentation site without wandering into archives.
	DefaultMaxDepth = 2

	// DefaultConcurrency is the number of in-flight fetches. Three is
	// polite to small hosts while still overlapping network latency.
	DefaultConcurrency = 3

	// MaxConcurrency caps the --concurrency flag. More than ten parallel
	// requests against a single site is rarely acceptable crawling.
	MaxConcurrency = 10

	// DefaultRequestDelay is the pause between requests to the same
	// engine. One second matches common crawler etiquette.
	DefaultRequestDelay = 1 * time.Second

	// MinRequestDelay and MaxRequestDelay bound the configurable delay.
	MinRequestDelay = 100 * time.Millisecond
	MaxRequestDelay = 10 * time.Second

	// DefaultTimeout is the per-request timeout. 30 seconds tolerates
	// slow documentation hosts without hanging a whole session.
	DefaultTimeout = 30 * time.Second

	// DefaultOutputRoot is the directory documents are written under
	// when no --output flag is given.
	DefaultOutputRoot = "scraped"

	// DefaultMaxBodySize limits the response body size read per page.
	// 10MB covers heavyweight documentation pages while preventing
	// memory exhaustion from unexpected downloads.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// Default output and extraction policies.
const (
	// DefaultStrategy mirrors the site structure on disk, which keeps
	// related pages together and makes the source URL recoverable.
	DefaultStrategy = model.StrategyMirror

	// DefaultNaming derives filenames from the URL.
	DefaultNaming = model.NamingURLBased

	// DefaultExtraction lets the extractor detect the main content.
	DefaultExtraction = model.MethodAuto

	// DefaultCleaningProfile strips navigation chrome but keeps media.
	DefaultCleaningProfile = model.ProfileModerate
)

// Config holds all configuration options for a scrape session.
// It is populated from CLI flags and the optional configuration file and
// passed through the application via dependency injection rather than
// global state.
type Config struct {
	// Seeds is the ordered list of starting URLs. Seeds are always
	// fetched; include/exclude patterns scope the links followed from
	// them, not the seeds themselves.
	Seeds []string

	// IncludePatterns are wildcard patterns a discovered link must match
	// to be followed. Empty means follow everything in scope.
	IncludePatterns []string

	// ExcludePatterns are wildcard patterns that remove a link from
	// scope even when an include pattern matches it.
	ExcludePatterns []string

	// MaxPages bounds how many pages a session may match and fetch.
	// Zero means unbounded.
	MaxPages int

	// MaxDepth is the maximum hop distance from the seeds. Depth 0 is
	// the seed itself; links found at depth MaxDepth are rejected.
	MaxDepth int

	// Concurrency is the number of simultaneous in-flight fetches,
	// between 1 and MaxConcurrency.
	Concurrency int

	// RequestDelay is the pause enforced between requests, between
	// MinRequestDelay and MaxRequestDelay.
	RequestDelay time.Duration

	// Timeout is the per-request timeout. A timed-out fetch is a
	// per-node failure, never a session failure.
	Timeout time.Duration

	// OutputRoot is the directory documents are written under.
	OutputRoot string

	// Strategy selects the directory layout under OutputRoot.
	// One of the model.Strategy* names.
	Strategy string

	// Naming selects the filename convention. One of the model.Naming*
	// names.
	Naming string

	// PathTemplate is the custom_pattern template with {host}, {path},
	// {date}, and {title} placeholders. Required when Strategy is
	// custom_pattern, ignored otherwise.
	PathTemplate string

	// Extraction selects the content extraction method: css, xpath, or
	// auto.
	Extraction string

	// Selector is the CSS selector list or XPath expression for the css
	// and xpath methods. Empty uses the extractor's defaults.
	Selector string

	// CleaningProfile selects how aggressively markup is stripped
	// before conversion: strict, moderate, or minimal.
	CleaningProfile string

	// IncludeExternal allows following links to hosts other than the
	// seed hosts. Off by default so a crawl stays on the target site.
	IncludeExternal bool

	// UserAgent pins a single User-Agent header. When empty, the fetch
	// engine rotates through its built-in browser agents.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Zero uses DefaultMaxBodySize.
	MaxBodySize int64

	// DryRun enumerates and scopes links without fetching or storing
	// any page content.
	DryRun bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches the current directory, the home directory, and
	// the XDG config directory.
	ConfigFilePath string

	// SiteConfigs holds per-host overrides loaded from the config file.
	SiteConfigs *File

	// JSONReport emits the session report as JSON instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport emits the session report as GitHub Flavored
	// Markdown. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile writes the session report to this path instead of
	// stdout. Parent directories are created as needed.
	ReportFile string

	// DBDir is the directory holding the session history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB persists the session and its documents to the history
	// database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values. Callers override
// individual fields from flags and the configuration file afterwards.
func NewConfig() *Config {
	return &Config{
		MaxPages:        DefaultMaxPages,
		MaxDepth:        DefaultMaxDepth,
		Concurrency:     DefaultConcurrency,
		RequestDelay:    DefaultRequestDelay,
		Timeout:         DefaultTimeout,
		OutputRoot:      DefaultOutputRoot,
		Strategy:        DefaultStrategy,
		Naming:          DefaultNaming,
		Extraction:      DefaultExtraction,
		CleaningProfile: DefaultCleaningProfile,
		MaxBodySize:     DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for the scraper.
// On Linux: ~/.local/share/crawl4ai-scraper
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the scraper.
// On Linux: ~/.config/crawl4ai-scraper
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns a specific
// error describing the first rule that fails. It is called once after
// CLI parsing, before a session starts.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}
	for _, seed := range c.Seeds {
		u, err := url.Parse(seed)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidSeed, seed)
		}
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.Concurrency < 1 || c.Concurrency > MaxConcurrency {
		return ErrInvalidConcurrency
	}
	if c.RequestDelay < MinRequestDelay || c.RequestDelay > MaxRequestDelay {
		return ErrInvalidRequestDelay
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if !model.ValidStrategy(c.Strategy) {
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Strategy)
	}
	if !model.ValidNaming(c.Naming) {
		return fmt.Errorf("%w: %q", ErrUnknownNaming, c.Naming)
	}
	if c.Strategy == model.StrategyCustomPattern && c.PathTemplate == "" {
		return ErrMissingTemplate
	}
	if !model.ValidExtractionMethod(c.Extraction) {
		return fmt.Errorf("%w: %q", ErrUnknownExtraction, c.Extraction)
	}
	if !model.ValidCleaningProfile(c.CleaningProfile) {
		return fmt.Errorf("%w: %q", ErrUnknownCleaningProfile, c.CleaningProfile)
	}

	if !c.DryRun && c.OutputRoot == "" {
		return ErrNoOutputRoot
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
