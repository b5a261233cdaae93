package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/devoperand/crawl4ai-scraper/internal/extract"
	"github.com/devoperand/crawl4ai-scraper/internal/model"
)

// Engine defaults, used when the corresponding option is not given.
const (
	// DefaultTimeout is the per-request timeout for the internally
	// constructed HTTP client.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestDelay is the minimum spacing between requests.
	DefaultRequestDelay = 1 * time.Second

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 10 * 1024 * 1024
)

// Engine performs the HTTP work of a crawl session: link enumeration for
// discovery and content fetching for extraction. All requests share one
// rate limiter, one robots.txt cache, and one user-agent rotation, so the
// politeness settings hold regardless of caller concurrency.
type Engine struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// limiter spaces requests out by the configured delay.
	limiter *rate.Limiter

	// robots caches per-host robots.txt verdicts.
	robots *robotsChecker

	// agents supplies the User-Agent header for each request.
	agents *agentRing

	// extractor converts fetched HTML into Markdown documents.
	extractor *extract.Extractor

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	timeout  time.Duration
	method   string
	selector string
	profile  string
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the per-request timeout. It only applies to the
// internally constructed client; an externally supplied client keeps its
// own timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithRequestDelay sets the minimum spacing between requests.
func WithRequestDelay(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(e *Engine) {
		if size > 0 {
			e.maxBodySize = size
		}
	}
}

// WithUserAgent sets a fixed User-Agent header, disabling rotation.
func WithUserAgent(ua string) Option {
	return func(e *Engine) {
		if ua != "" {
			e.agents = newAgentRing([]string{ua})
		}
	}
}

// WithExtraction configures the content extraction method, selector or
// expression, and cleaning profile.
func WithExtraction(method, selector, profile string) Option {
	return func(e *Engine) {
		e.method = method
		e.selector = selector
		e.profile = profile
	}
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine. client may be nil, in which case an internal
// client with the configured timeout is used. Construction fails with an
// error wrapping ErrEngineUnavailable when the extraction configuration
// is unusable; callers treat that as session-fatal.
func New(client *http.Client, opts ...Option) (*Engine, error) {
	e := &Engine{
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
		method:      model.MethodAuto,
		profile:     model.ProfileModerate,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.client == nil {
		if client == nil {
			client = &http.Client{Timeout: e.timeout}
		}
		e.client = client
	}
	if e.limiter == nil {
		e.limiter = rate.NewLimiter(rate.Every(DefaultRequestDelay), 1)
	}
	if e.agents == nil {
		e.agents = newAgentRing(nil)
	}

	extractor, err := extract.New(e.method, e.selector, e.profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	e.extractor = extractor
	e.robots = newRobotsChecker(e.client)

	return e, nil
}

// FetchLinks fetches rawURL and returns its outbound links, normalized
// and deduplicated in document order. Non-HTML responses yield no links
// without error. The fetch waits for the engine's rate limiter and is
// subject to the host's robots.txt.
func (e *Engine) FetchLinks(ctx context.Context, rawURL string) ([]string, error) {
	resp, body, err := e.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if !isHTML(resp.Header.Get("Content-Type")) {
		return []string{}, nil
	}

	parser, err := newLinkParser(resp.Request.URL.String())
	if err != nil {
		return nil, fmt.Errorf("parse final url: %w", err)
	}
	links, err := parser.parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	e.logger.Debug("fetched links", "url", rawURL, "count", len(links))
	return links, nil
}

// FetchContent fetches rawURL and extracts it into a Markdown document.
// The returned document's URL is rawURL even when the server redirected;
// the redirect target is only used to resolve relative links.
func (e *Engine) FetchContent(ctx context.Context, rawURL string) (*model.CrawledDocument, error) {
	resp, body, err := e.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTML(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContent, contentType)
	}

	result, err := e.extractor.Extract(resp.Request.URL.String(), string(body))
	if err != nil {
		return nil, err
	}

	doc := &model.CrawledDocument{
		URL:         rawURL,
		Title:       result.Title,
		Description: result.Description,
		Markdown:    result.Markdown,
		Extraction: model.ExtractionInfo{
			Method:        e.method,
			Template:      result.Template,
			UserAgent:     resp.Request.Header.Get("User-Agent"),
			ContentLength: result.ContentLength,
			CrawledAt:     time.Now().UTC(),
		},
	}

	e.logger.Debug("fetched content", "url", rawURL, "bytes", result.ContentLength)
	return doc, nil
}

// get performs one rate-limited, robots-checked GET request and returns
// the response together with its size-capped body.
func (e *Engine) get(ctx context.Context, rawURL string) (*http.Response, []byte, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	agent := e.agents.Next()
	req.Header.Set("User-Agent", agent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	if !e.robots.allowed(ctx, req.URL, agent) {
		return nil, nil, fmt.Errorf("%w: %s", ErrRobotsDisallowed, rawURL)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("%w: %d for %s", ErrBadStatus, resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBodySize))
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}

	return resp, body, nil
}

// isHTML reports whether a Content-Type header denotes an HTML document.
func isHTML(contentType string) bool {
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml+xml")
}
