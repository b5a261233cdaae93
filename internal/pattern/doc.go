// Package pattern compiles wildcard URL patterns into scope predicates.
//
// Patterns use three wildcards: `*` matches within one path segment, `**`
// spans path segments, and `?` matches a single character. A pattern
// written with a scheme, such as "https://docs.example.com/**", is applied
// to the whole URL with the host compared case-insensitively; a bare
// pattern such as "**/guide/**" is applied to the path alone,
// case-sensitively. Host-qualified patterns therefore need the scheme
// (or a leading `**`).
//
// A URL is in scope when it matches any include pattern (an empty include
// set matches everything) and no exclude pattern; excludes always win.
//
//	m, err := pattern.Compile([]string{"**/docs/**"}, []string{"**/v1/**"})
//	if err != nil { ... }
//	m.Matches("https://x.com/a/docs/b") // true
//
// Matchers are pure: the same inputs always produce the same answer, and
// a single Matcher may be shared across concurrent discovery operations.
package pattern
