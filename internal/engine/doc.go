// Package engine performs the HTTP work of a crawl session.
//
// The Engine exposes two operations used by the discovery controller and
// the content pipeline:
//
//   - FetchLinks: GET a page and enumerate its outbound links, resolved
//     against the final URL, normalized, and deduplicated in document
//     order. Non-HTML responses yield no links.
//   - FetchContent: GET a page and run the configured extractor over it,
//     producing a Markdown document with extraction metadata.
//
// Politeness is enforced inside the engine, not by callers: a shared rate
// limiter spaces all requests by the configured delay, a per-host
// robots.txt cache blocks explicitly disallowed paths (fail-open when
// robots.txt is missing or broken), response bodies are size-capped, and
// the User-Agent header rotates through common desktop browser agents
// unless a fixed agent is configured.
//
// Engine construction validates the extraction configuration; failures
// wrap ErrEngineUnavailable and abort the session. Failures of individual
// fetches are ordinary per-URL errors the controller records against the
// node.
package engine
