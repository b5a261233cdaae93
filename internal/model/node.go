package model

import (
	"encoding/json"
	"fmt"
)

// NodeStatus tracks a discovered URL through the crawl lifecycle.
type NodeStatus int

const (
	// StatusPending marks a seed URL that has not been dispatched yet.
	// Only seeds pass through this state; discovered links are classified
	// as matched or rejected the moment they are recorded.
	StatusPending NodeStatus = iota

	// StatusMatched marks a URL that passed include/exclude scoping and
	// sits in the frontier awaiting its fetch.
	StatusMatched

	// StatusRejected marks a URL recorded in the tree but excluded from
	// the crawl, either by depth budget or by pattern scoping. Rejected
	// nodes are never enqueued and never fetched.
	StatusRejected

	// StatusFetched marks a URL whose fetch completed successfully.
	StatusFetched

	// StatusFailed marks a URL whose fetch or content extraction failed.
	// Failure is per-node; the session continues past it.
	StatusFailed
)

// String returns the lowercase status name used in reports and storage.
func (s NodeStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusMatched:
		return "matched"
	case StatusRejected:
		return "rejected"
	case StatusFetched:
		return "fetched"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseNodeStatus converts a stored status name back into a NodeStatus.
// The second return value reports whether the name was recognized.
func ParseNodeStatus(name string) (NodeStatus, bool) {
	switch name {
	case "pending":
		return StatusPending, true
	case "matched":
		return StatusMatched, true
	case "rejected":
		return StatusRejected, true
	case "fetched":
		return StatusFetched, true
	case "failed":
		return StatusFailed, true
	default:
		return StatusPending, false
	}
}

// MarshalJSON encodes the status as its string name.
func (s NodeStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status from its string name.
func (s *NodeStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, ok := ParseNodeStatus(name)
	if !ok {
		return fmt.Errorf("unknown node status %q", name)
	}
	*s = parsed
	return nil
}

// DiscoveredURL is one node in the discovery tree.
//
// Nodes are created when the discovery controller records a seed or an
// outbound link, and are never removed within a session: the tree is
// append-only so a partial session remains inspectable after an abort.
type DiscoveredURL struct {
	// URL is the normalized absolute URL, unique within a session.
	URL string `json:"url"`

	// Depth is the hop distance from the session seeds. Seeds are depth 0.
	Depth int `json:"depth"`

	// Parent is the URL of the page that discovered this node.
	// Empty for seeds. The parent always has its own node in the tree.
	Parent string `json:"parent,omitempty"`

	// Status is the node's current lifecycle state.
	Status NodeStatus `json:"status"`

	// Reason holds the fetch or extraction error for failed nodes, or
	// the rejection cause for rejected ones.
	Reason string `json:"reason,omitempty"`
}

// IsSeed reports whether the node is a session seed.
func (d *DiscoveredURL) IsSeed() bool {
	return d.Parent == ""
}
