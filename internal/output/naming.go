package output

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/sha3"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/devoperand/crawl4ai-scraper/internal/model"
)

// hashNameLength is how many hex characters of the URL digest the hash
// naming convention keeps.
const hashNameLength = 12

// timestampLayout is the filename form of the crawl time.
const timestampLayout = "20060102_150405"

// foldDiacritics decomposes characters and drops combining marks, so
// accented titles slug to plain ASCII letters.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// sanitizeName collapses every run of non-alphanumeric characters in s to
// a single hyphen and trims hyphens from both ends. Case is preserved:
// URL paths are case-sensitive and two paths differing only in case must
// not be forced into a collision.
func sanitizeName(s string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphen = false
			b.WriteRune(r)
			continue
		}
		hyphen = true
	}
	return b.String()
}

// slugTitle lowercases the title, folds diacritics, and collapses
// non-alphanumerics to hyphens.
func slugTitle(title string) string {
	if folded, _, err := transform.String(foldDiacritics, title); err == nil {
		title = folded
	}
	return sanitizeName(strings.ToLower(title))
}

// splitPathSegments breaks a URL path into its non-empty segments and
// reports whether the path addresses a directory (empty, root, or
// trailing slash). The last segment of a non-directory path is a
// filename position, not a directory.
func splitPathSegments(p string) (segments []string, isDir bool) {
	isDir = p == "" || strings.HasSuffix(p, "/")
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments, isDir
}

// baseName computes the extension-less filename for doc under the
// configured naming convention. crawledAt and counter serve the
// timestamp convention; the counter is a per-session monotonic value
// that keeps timestamp names unique within one run.
func (o *Organizer) baseName(u *url.URL, doc *model.CrawledDocument, crawledAt time.Time, counter int) (string, error) {
	switch o.naming {
	case model.NamingTitleBased:
		if slug := slugTitle(doc.Title); slug != "" {
			return slug, nil
		}
		return o.urlBasedName(u), nil

	case model.NamingTimestamp:
		return fmt.Sprintf("%s-%s-%d", sanitizeName(u.Host), crawledAt.Format(timestampLayout), counter), nil

	case model.NamingHash:
		normalized, err := model.NormalizeURL(doc.URL)
		if err != nil {
			return "", err
		}
		digest := sha3.Sum256([]byte(normalized))
		return fmt.Sprintf("%s-%x", sanitizeName(u.Host), digest)[:len(sanitizeName(u.Host))+1+hashNameLength], nil

	default: // model.NamingURLBased
		return o.urlBasedName(u), nil
	}
}

// urlBasedName derives a filename from the URL itself. What part of the
// URL it uses depends on the strategy: directories that already encode
// the host or path must not repeat in the filename.
func (o *Organizer) urlBasedName(u *url.URL) string {
	segments, isDir := splitPathSegments(u.Path)

	switch o.strategy {
	case model.StrategyMirror:
		// The directory tree already mirrors host and parent path.
		if isDir || len(segments) == 0 {
			return "index"
		}
		return sanitizeName(segments[len(segments)-1])

	case model.StrategyDomainGrouped:
		// The host is the directory; the path alone names the file.
		if len(segments) == 0 {
			return "index"
		}
		return sanitizeName(strings.Join(segments, "-"))

	default: // flat, date_organized, custom_pattern
		if len(segments) == 0 {
			return sanitizeName(u.Host)
		}
		return sanitizeName(u.Host + "-" + strings.Join(segments, "-"))
	}
}
