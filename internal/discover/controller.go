package discover

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/devoperand/crawl4ai-scraper/internal/model"
	"github.com/devoperand/crawl4ai-scraper/internal/pattern"
)

// Controller defaults, used when the corresponding option is not given.
const (
	// DefaultMaxPages bounds how many pages a session may match and fetch.
	DefaultMaxPages = 50

	// DefaultMaxDepth is the hop budget from the seeds.
	DefaultMaxDepth = 2

	// DefaultConcurrency is the number of in-flight link fetches.
	DefaultConcurrency = 3
)

// LinkFetcher is the external engine boundary used during discovery.
// It fetches one page and enumerates its outbound links, normalized and
// deduplicated in document order. A dry run and a real run use the same
// call: discovery never retrieves page content itself.
type LinkFetcher interface {
	FetchLinks(ctx context.Context, url string) ([]string, error)
}

// Controller drives a breadth-first discovery over a site, delegating
// fetches to a LinkFetcher and scoping followed links with a pattern
// matcher. One Controller runs one session at a time.
type Controller struct {
	fetcher LinkFetcher
	matcher *pattern.Matcher

	maxPages        int
	maxDepth        int
	concurrency     int
	includeExternal bool

	// onFetched is invoked from the merge loop, in dequeue order, for
	// each node that reaches fetched.
	onFetched func(url string, depth int)

	// sessionID overrides the generated session identifier.
	sessionID string

	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithMaxPages bounds how many pages the session may match and fetch.
// Zero or negative means unbounded.
func WithMaxPages(n int) Option {
	return func(c *Controller) {
		c.maxPages = n
	}
}

// WithMaxDepth sets the maximum hop distance from the seeds. Links found
// on pages at this depth are rejected rather than followed.
func WithMaxDepth(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.maxDepth = n
		}
	}
}

// WithConcurrency sets the number of in-flight link fetches per batch.
func WithConcurrency(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithIncludeExternal allows following links to hosts other than the
// discovering page's host.
func WithIncludeExternal(include bool) Option {
	return func(c *Controller) {
		c.includeExternal = include
	}
}

// WithOnFetched registers a hook invoked for every node that reaches
// fetched, in dequeue order. The crawl command wires it to the content
// pipeline so writes overlap with ongoing discovery.
func WithOnFetched(fn func(url string, depth int)) Option {
	return func(c *Controller) {
		c.onFetched = fn
	}
}

// WithSessionID fixes the session identifier instead of generating one.
// Callers that persist per-document results while discovery is still
// running need the identifier before Run returns.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		c.sessionID = id
	}
}

// WithLogger sets the logger used for per-node debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController creates a Controller. matcher scopes followed links;
// a nil matcher follows everything in scope.
func NewController(fetcher LinkFetcher, matcher *pattern.Matcher, opts ...Option) *Controller {
	if matcher == nil {
		matcher, _ = pattern.Compile(nil, nil)
	}
	c := &Controller{
		fetcher:     fetcher,
		matcher:     matcher,
		maxPages:    DefaultMaxPages,
		maxDepth:    DefaultMaxDepth,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run drives a breadth-first discovery from seeds until the frontier
// empties or the page budget is exhausted; both are normal termination.
// Cancellation aborts the session with an error wrapping
// ErrDiscoveryAborted, and the partial session is still returned so the
// tree built so far stays inspectable.
func (c *Controller) Run(ctx context.Context, seeds []string) (*Session, error) {
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}

	session := newSession()
	if c.sessionID != "" {
		session.id = c.sessionID
	}
	for _, seed := range seeds {
		normalized, err := model.NormalizeURL(seed)
		if err != nil {
			return nil, fmt.Errorf("seed %q: %w", seed, err)
		}
		session.addSeed(normalized)
	}

	c.logger.Info("discovery started",
		"session", session.ID(),
		"seeds", len(session.Seeds()),
		"max_pages", c.maxPages,
		"max_depth", c.maxDepth,
		"concurrency", c.concurrency,
	)

	for {
		if err := ctx.Err(); err != nil {
			return session, fmt.Errorf("%w: %v", ErrDiscoveryAborted, err)
		}

		batch := session.popBatch(c.concurrency, c.pendingBudget(session))
		if len(batch) == 0 {
			break
		}

		results := c.fetchBatch(ctx, batch)

		// Results merge in dequeue order on this single goroutine, so the
		// completed tree reflects BFS order no matter how the concurrent
		// fetches interleaved.
		for i, url := range batch {
			if err := ctx.Err(); err != nil {
				return session, fmt.Errorf("%w: %v", ErrDiscoveryAborted, err)
			}
			c.merge(session, url, results[i].links, results[i].err)
		}
	}

	c.logger.Info("discovery finished",
		"session", session.ID(),
		"discovered", session.Len(),
	)
	return session, nil
}

// pendingBudget reports how many budget slots remain for pending seeds,
// or -1 when the budget is unbounded.
func (c *Controller) pendingBudget(session *Session) int {
	if c.maxPages <= 0 {
		return -1
	}
	left := c.maxPages - session.budgetUsed()
	if left < 0 {
		left = 0
	}
	return left
}

// fetchResult is the outcome of one link fetch.
type fetchResult struct {
	links []string
	err   error
}

// fetchBatch fetches all batch nodes concurrently and returns results in
// batch order.
func (c *Controller) fetchBatch(ctx context.Context, batch []string) []fetchResult {
	results := make([]fetchResult, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, url := range batch {
		g.Go(func() error {
			links, err := c.fetcher.FetchLinks(gctx, url)
			results[i] = fetchResult{links: links, err: err}
			// Fetch errors are per-node; merging decides their fate.
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	return results
}

// merge folds one fetch result into the session: the node's status
// transition, the hook, and the scoping of its outbound links.
func (c *Controller) merge(session *Session, url string, links []string, err error) {
	node, ok := session.Node(url)
	if !ok {
		return
	}

	if err != nil {
		session.setStatus(url, model.StatusFailed, err.Error())
		c.logger.Debug("fetch failed", "url", url, "depth", node.Depth, "error", err)
		return
	}

	session.setStatus(url, model.StatusFetched, "")
	c.logger.Debug("fetched", "url", url, "depth", node.Depth, "links", len(links))
	if c.onFetched != nil {
		c.onFetched(url, node.Depth)
	}

	for _, link := range links {
		if session.has(link) {
			continue
		}
		if !c.includeExternal && !model.SameHost(url, link) {
			continue
		}
		childDepth := node.Depth + 1
		switch {
		case childDepth > c.maxDepth:
			session.addRejected(link, url, childDepth, ReasonDepthLimit)
		case !c.matcher.Matches(link):
			session.addRejected(link, url, childDepth, ReasonNoPatternMatch)
		default:
			if !session.tryAddMatched(link, url, childDepth, c.maxPages) {
				// Budget exhausted: no further links from this page can be
				// recorded as matched, and none of the remaining ones will
				// free a slot. Stop scoping here.
				return
			}
		}
	}
}
