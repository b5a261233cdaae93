package engine

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/devoperand/crawl4ai-scraper/internal/model"
)

// skipHrefPrefixes are anchor targets that never lead to a fetchable page.
var skipHrefPrefixes = []string{
	"javascript:",
	"mailto:",
	"tel:",
	"data:",
}

// linkParser extracts outbound links from one HTML page. Links are
// resolved against the page URL, normalized, restricted to http and
// https, and deduplicated in document order.
type linkParser struct {
	base *url.URL
}

// newLinkParser creates a parser resolving links against baseURL.
func newLinkParser(baseURL string) (*linkParser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &linkParser{base: u}, nil
}

// parse walks the HTML tree and collects href targets of anchor elements.
// Malformed HTML is tolerated; the parser works with whatever tree the
// tokenizer recovers.
func (p *linkParser) parse(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	links := make([]string, 0)
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if link := p.resolveHref(getAttr(n, "href")); link != "" && !seen[link] {
				seen[link] = true
				links = append(links, link)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

// resolveHref resolves one href value to a normalized absolute URL.
// Non-navigational targets and non-web schemes resolve to "".
func (p *linkParser) resolveHref(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}
	for _, prefix := range skipHrefPrefixes {
		if strings.HasPrefix(href, prefix) {
			return ""
		}
	}

	resolved, err := model.ResolveURL(p.base, href)
	if err != nil {
		return ""
	}

	u, err := url.Parse(resolved)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return resolved
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
