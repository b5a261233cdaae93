package discover

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devoperand/crawl4ai-scraper/internal/model"
)

// Rejection reasons recorded on nodes that are discovered but not enqueued.
const (
	// ReasonDepthLimit marks links one hop beyond the depth budget.
	ReasonDepthLimit = "depth limit exceeded"

	// ReasonNoPatternMatch marks links rejected by the include/exclude
	// pattern set.
	ReasonNoPatternMatch = "no pattern match"
)

// Session owns one discovery run: the append-only tree of discovered
// nodes, the FIFO frontier, and per-status counts. Nodes are stored in an
// arena keyed by normalized URL with parents held as key references, so
// the tree is a forest without live pointers.
//
// During a run all tree mutations happen on the controller's merge loop;
// the mutex exists for the content phase, which downgrades nodes from
// fetched to failed concurrently with ongoing discovery.
type Session struct {
	mu sync.Mutex

	// id uniquely identifies the session in summaries and the history
	// database.
	id string

	// startedAt is when the session was created.
	startedAt time.Time

	// seeds are the normalized seed URLs in input order.
	seeds []string

	// nodes is the arena, keyed by normalized URL.
	nodes map[string]*model.DiscoveredURL

	// order records arena keys in discovery order.
	order []string

	// frontier is the FIFO queue of node keys awaiting a fetch.
	frontier []string

	// counts tracks how many nodes currently hold each status.
	counts map[model.NodeStatus]int

	// contentFailed counts nodes downgraded from fetched to failed by the
	// content phase. They keep their discovery budget slot so the pages
	// discovery selects never depend on content-phase outcomes.
	contentFailed int
}

func newSession() *Session {
	return &Session{
		id:        uuid.NewString(),
		startedAt: time.Now().UTC(),
		nodes:     make(map[string]*model.DiscoveredURL),
		counts:    make(map[model.NodeStatus]int),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// StartedAt returns when the session was created.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// addSeed records url as a pending root node and enqueues it. Duplicate
// seeds are ignored.
func (s *Session) addSeed(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[url]; ok {
		return
	}
	s.seeds = append(s.seeds, url)
	s.insert(&model.DiscoveredURL{
		URL:    url,
		Depth:  0,
		Status: model.StatusPending,
	})
	s.frontier = append(s.frontier, url)
}

// addRejected records a link discovered on parent that is excluded from
// the crawl. Rejected nodes are kept for reporting and never enqueued.
func (s *Session) addRejected(url, parent string, depth int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[url]; ok {
		return
	}
	s.insert(&model.DiscoveredURL{
		URL:    url,
		Depth:  depth,
		Parent: parent,
		Status: model.StatusRejected,
		Reason: reason,
	})
}

// tryAddMatched records a link discovered on parent as matched and
// enqueues it, provided a budget slot is free. maxPages <= 0 means
// unbounded. The budget check and the insertion are one critical section,
// so concurrent content-phase transitions can never oversubscribe the
// budget. It reports whether the node was recorded.
func (s *Session) tryAddMatched(url, parent string, depth, maxPages int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[url]; ok {
		return false
	}
	if maxPages > 0 && s.budgetUsedLocked() >= maxPages {
		return false
	}
	s.insert(&model.DiscoveredURL{
		URL:    url,
		Depth:  depth,
		Parent: parent,
		Status: model.StatusMatched,
	})
	s.frontier = append(s.frontier, url)
	return true
}

// budgetUsed reports how many budget slots are held: nodes currently
// matched or fetched, plus fetched nodes later downgraded by the content
// phase.
func (s *Session) budgetUsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgetUsedLocked()
}

func (s *Session) budgetUsedLocked() int {
	return s.counts[model.StatusMatched] + s.counts[model.StatusFetched] + s.contentFailed
}

// insert stores a node. Callers hold the mutex.
func (s *Session) insert(n *model.DiscoveredURL) {
	s.nodes[n.URL] = n
	s.order = append(s.order, n.URL)
	s.counts[n.Status]++
}

// has reports whether url is already recorded.
func (s *Session) has(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.nodes[url]
	return ok
}

// popBatch removes up to limit nodes from the frontier front. Nodes that
// would consume a new budget slot on success (pending seeds) are only
// taken while pendingBudget allows; a negative pendingBudget means
// unbounded. The pop stops at the first node it cannot afford, preserving
// FIFO order.
func (s *Session) popBatch(limit, pendingBudget int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make([]string, 0, limit)
	for len(batch) < limit && len(s.frontier) > 0 {
		url := s.frontier[0]
		node, ok := s.nodes[url]
		if !ok {
			s.frontier = s.frontier[1:]
			continue
		}
		if node.Status == model.StatusPending {
			if pendingBudget == 0 {
				break
			}
			if pendingBudget > 0 {
				pendingBudget--
			}
		}
		s.frontier = s.frontier[1:]
		batch = append(batch, url)
	}
	return batch
}

// frontierLen reports how many nodes await a fetch.
func (s *Session) frontierLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frontier)
}

// setStatus transitions a node and returns its previous status.
func (s *Session) setStatus(url string, status model.NodeStatus, reason string) (model.NodeStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[url]
	if !ok {
		return 0, false
	}
	prev := node.Status
	s.counts[prev]--
	node.Status = status
	node.Reason = reason
	s.counts[status]++
	return prev, true
}

// MarkContentFailed downgrades a fetched node to failed after a content
// phase error. It reports whether the transition happened. The node keeps
// its discovery budget slot: content failures never change which pages
// discovery selected.
func (s *Session) MarkContentFailed(url, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[url]
	if !ok || node.Status != model.StatusFetched {
		return false
	}
	s.counts[node.Status]--
	node.Status = model.StatusFailed
	node.Reason = reason
	s.counts[model.StatusFailed]++
	s.contentFailed++
	return true
}

// Node returns a copy of the node for url.
func (s *Session) Node(url string) (model.DiscoveredURL, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[url]
	if !ok {
		return model.DiscoveredURL{}, false
	}
	return *node, true
}

// Nodes returns copies of all recorded nodes in discovery order.
func (s *Session) Nodes() []model.DiscoveredURL {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.DiscoveredURL, 0, len(s.order))
	for _, url := range s.order {
		out = append(out, *s.nodes[url])
	}
	return out
}

// Seeds returns the normalized seed URLs in input order.
func (s *Session) Seeds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seeds...)
}

// Counts returns a copy of the per-status node counts.
func (s *Session) Counts() map[model.NodeStatus]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[model.NodeStatus]int, len(s.counts))
	for status, n := range s.counts {
		out[status] = n
	}
	return out
}

// Len reports how many nodes the session recorded.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Summarize builds a summary of the current tree state. The output and
// write fields belong to the phases that own them and are filled in by
// the caller.
func (s *Session) Summarize() *model.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := &model.SessionSummary{
		ID:              s.id,
		Seeds:           append([]string(nil), s.seeds...),
		StartedAt:       s.startedAt,
		TotalDiscovered: len(s.order),
		Matched:         s.counts[model.StatusMatched],
		Fetched:         s.counts[model.StatusFetched],
		Failed:          s.counts[model.StatusFailed],
		Rejected:        s.counts[model.StatusRejected],
	}
	for _, url := range s.order {
		if n := s.nodes[url]; n.Status == model.StatusFailed {
			sum.FailedURLs = append(sum.FailedURLs, model.FailedURL{URL: n.URL, Reason: n.Reason})
		}
	}
	sum.Finalize(time.Now().UTC())
	return sum
}
