// Package discover drives the breadth-first discovery phase of a crawl.
//
// A Controller pops frontier nodes in FIFO order, asks a LinkFetcher for
// each node's outbound links (up to the configured concurrency in
// flight), and merges the results back single-threaded in dequeue order.
// Each discovered link is normalized, deduplicated against the visited
// set, and either enqueued as matched or recorded as rejected (depth
// budget or pattern scoping). The merge order makes the completed tree a
// pure BFS forest regardless of how fetch completions interleave, so a
// dry run and a real run over the same deterministic fetcher produce
// identical trees.
//
// The Session owns the append-only discovery tree: an arena of nodes
// keyed by normalized URL, with parents stored as key references. Nodes
// are never removed, so a session aborted mid-run still carries the
// partial tree. The page budget holds at all times: the number of
// matched plus fetched nodes never exceeds the page budget, and a node
// that the content phase later fails keeps its slot so discovery stays
// deterministic.
//
// A single node's fetch failure is recorded on the node and tolerated;
// only cancellation aborts the session, with ErrDiscoveryAborted.
package discover
