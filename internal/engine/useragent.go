package engine

import "sync"

// defaultUserAgents are the desktop browser agents rotated across requests
// when no fixed agent is configured. Rotation spreads requests across
// common browser fingerprints instead of advertising a crawler.
var defaultUserAgents = []string{
	// Chrome on Windows
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	// Chrome on Mac
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	// Firefox on Windows
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	// Firefox on Mac
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
	// Safari on Mac
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	// Edge on Windows
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
	// Chrome on Linux
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// agentRing hands out user agents in round-robin order. It is safe for
// concurrent use.
type agentRing struct {
	mu     sync.Mutex
	agents []string
	next   int
}

// newAgentRing creates a ring over the given agents. An empty or nil
// slice falls back to the default agent list.
func newAgentRing(agents []string) *agentRing {
	if len(agents) == 0 {
		agents = defaultUserAgents
	}
	return &agentRing{agents: agents}
}

// Next returns the next agent in rotation.
func (r *agentRing) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ua := r.agents[r.next]
	r.next = (r.next + 1) % len(r.agents)
	return ua
}
