package engine

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsTxtPath is the well-known path for robots.txt files.
const robotsTxtPath = "/robots.txt"

// maxRobotsBodySize limits the size of robots.txt responses we will read.
const maxRobotsBodySize = 512 * 1024

// robotsChecker fetches and caches robots.txt rules per host for the
// lifetime of a session. The policy is fail-open: only a successfully
// fetched and parsed robots.txt can block a URL, so unreachable or broken
// robots files never stall a crawl.
type robotsChecker struct {
	client *http.Client

	mu sync.Mutex
	// cache is keyed by lowercased host. A nil value records a host whose
	// robots.txt could not be fetched or parsed (allow all).
	cache map[string]*robotstxt.RobotsData
}

func newRobotsChecker(client *http.Client) *robotsChecker {
	return &robotsChecker{
		client: client,
		cache:  make(map[string]*robotstxt.RobotsData),
	}
}

// allowed reports whether agent may fetch u according to the host's
// robots.txt. Concurrent first hits on the same host may fetch twice;
// the last result wins.
func (r *robotsChecker) allowed(ctx context.Context, u *url.URL, agent string) bool {
	host := strings.ToLower(u.Host)
	if host == "" {
		return true
	}

	r.mu.Lock()
	data, ok := r.cache[host]
	r.mu.Unlock()

	if !ok {
		data = r.fetch(ctx, u.Scheme, host, agent)
		r.mu.Lock()
		r.cache[host] = data
		r.mu.Unlock()
	}

	if data == nil {
		return true
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, agent)
}

// fetch retrieves and parses robots.txt for a host. Any failure, and any
// non-2xx response, yields nil so the host is treated as allow-all.
func (r *robotsChecker) fetch(ctx context.Context, scheme, host, agent string) *robotstxt.RobotsData {
	if scheme == "" {
		scheme = "https"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, scheme+"://"+host+robotsTxtPath, http.NoBody)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", agent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodySize))
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil
	}
	return data
}
