package pattern

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Matcher evaluates compiled include/exclude wildcard patterns against URLs.
// A Matcher is immutable after compilation and safe for concurrent use.
type Matcher struct {
	includes []compiled
	excludes []compiled
}

// compiled is one translated pattern. Patterns written with a scheme
// ("://" present) match the whole scheme://host/path form; bare patterns
// match the URL path only.
type compiled struct {
	raw     string
	re      *regexp.Regexp
	fullURL bool
}

// Compile translates wildcard patterns into a Matcher.
//
// Wildcard semantics:
//   - `*` matches any run of characters except `/`
//   - `**` matches any run of characters including `/`
//   - `?` matches exactly one character
//
// Every pattern is anchored at both ends. Compilation fails with
// ErrInvalidPattern when a pattern is empty or cannot be translated.
func Compile(includes, excludes []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range includes {
		c, err := compilePattern(p)
		if err != nil {
			return nil, err
		}
		m.includes = append(m.includes, c)
	}
	for _, p := range excludes {
		c, err := compilePattern(p)
		if err != nil {
			return nil, err
		}
		m.excludes = append(m.excludes, c)
	}
	return m, nil
}

// Matches reports whether rawURL is in scope: a URL is in scope when it
// matches any include pattern (or the include set is empty) and matches
// no exclude pattern. An exclude match always wins. Unparseable URLs are
// never in scope.
func (m *Matcher) Matches(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	for _, c := range m.excludes {
		if c.match(u) {
			return false
		}
	}

	if len(m.includes) == 0 {
		return true
	}
	for _, c := range m.includes {
		if c.match(u) {
			return true
		}
	}
	return false
}

// match applies one compiled pattern to the appropriate subject string.
// Scheme and host are folded to lowercase; the path keeps its case.
func (c compiled) match(u *url.URL) bool {
	path := u.Path
	if path == "" {
		path = "/"
	}
	if !c.fullURL {
		return c.re.MatchString(path)
	}
	subject := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + path
	return c.re.MatchString(subject)
}

func compilePattern(p string) (compiled, error) {
	if strings.TrimSpace(p) == "" {
		return compiled{}, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}

	fullURL := strings.Contains(p, "://")
	if fullURL {
		p = foldHostPortion(p)
	}

	re, err := regexp.Compile(translate(p))
	if err != nil {
		return compiled{}, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err)
	}
	return compiled{raw: p, re: re, fullURL: fullURL}, nil
}

// foldHostPortion lowercases everything up to the first path separator
// after the scheme, so host matching is case-insensitive while path
// matching stays case-sensitive.
func foldHostPortion(p string) string {
	idx := strings.Index(p, "://")
	rest := p[idx+3:]
	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return strings.ToLower(p)
	}
	cut := idx + 3 + slash
	return strings.ToLower(p[:cut]) + p[cut:]
}

// translate converts a wildcard pattern into an anchored regular
// expression. Literal runs are quoted, so every metacharacter except the
// three wildcards is matched verbatim. Scanning bytes is safe here:
// `*` and `?` are ASCII and cannot appear inside a multi-byte rune.
func translate(p string) string {
	var b strings.Builder
	b.WriteByte('^')

	lit := 0
	flush := func(end int) {
		if lit < end {
			b.WriteString(regexp.QuoteMeta(p[lit:end]))
		}
	}

	for i := 0; i < len(p); {
		switch {
		case strings.HasPrefix(p[i:], "**"):
			flush(i)
			b.WriteString(".*")
			i += 2
			lit = i
		case p[i] == '*':
			flush(i)
			b.WriteString("[^/]*")
			i++
			lit = i
		case p[i] == '?':
			flush(i)
			b.WriteByte('.')
			i++
			lit = i
		default:
			i++
		}
	}
	flush(len(p))

	b.WriteByte('$')
	return b.String()
}
