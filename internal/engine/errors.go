package engine

import "errors"

var (
	// ErrEngineUnavailable is returned when the engine cannot be
	// constructed. Callers treat it as session-fatal rather than a
	// per-URL failure.
	ErrEngineUnavailable = errors.New("engine unavailable")

	// ErrRobotsDisallowed is returned when a host's robots.txt explicitly
	// disallows the requested path.
	ErrRobotsDisallowed = errors.New("blocked by robots.txt")

	// ErrBadStatus is returned when a fetch receives a non-success HTTP
	// status code.
	ErrBadStatus = errors.New("unexpected response status")

	// ErrUnsupportedContent is returned when content extraction is
	// requested for a non-HTML response.
	ErrUnsupportedContent = errors.New("unsupported content type")
)
