package extract

import (
	"fmt"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/devoperand/crawl4ai-scraper/internal/model"
)

// fallbackSelectors are tried in order when the css method runs without a
// configured selector. Common content containers come first, body last.
var fallbackSelectors = []string{
	"article",
	"main",
	".content",
	".post-content",
	".entry-content",
	"[role='main']",
	"body",
}

// fallbackExpressions are tried in order when the xpath method runs
// without a configured expression.
var fallbackExpressions = []string{
	"//article",
	"//main",
	"//body",
}

// readabilityTemplate is recorded for documents produced by the auto method.
const readabilityTemplate = "readability"

// Result is the outcome of extracting one fetched page.
type Result struct {
	// Title is taken from the document head, or from the article
	// extractor when the auto method runs.
	Title string

	// Description is the meta description, if present.
	Description string

	// Markdown is the converted page body.
	Markdown string

	// Template records the selector, expression, or extractor name that
	// produced the content.
	Template string

	// ContentLength is the length of Markdown in bytes.
	ContentLength int
}

// Extractor converts fetched HTML into Markdown using a fixed extraction
// method and cleaning profile. It is stateless and safe for concurrent use.
type Extractor struct {
	method   string
	selector string
	profile  string
}

// New creates an Extractor. method must be one of the model extraction
// method names and profile one of the model cleaning profile names.
// selector carries the CSS selector (comma-separated alternatives, first
// match wins) or the XPath expression; when empty, common content
// containers are tried in order.
func New(method, selector, profile string) (*Extractor, error) {
	if !model.ValidExtractionMethod(method) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if !model.ValidCleaningProfile(profile) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}
	return &Extractor{method: method, selector: selector, profile: profile}, nil
}

// Extract converts rawHTML fetched from pageURL into a Markdown document.
// The cleaning profile is applied to the parsed document before content
// selection, so stripped elements never reach the converter.
func (e *Extractor) Extract(pageURL, rawHTML string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := documentTitle(doc)
	description := documentDescription(doc)

	applyProfile(doc, e.profile)

	var contentHTML, template string
	switch e.method {
	case model.MethodCSS:
		contentHTML, template = e.selectCSS(doc)
	case model.MethodXPath:
		contentHTML, template, err = e.selectXPath(doc)
	case model.MethodAuto:
		var articleTitle string
		contentHTML, articleTitle, err = e.extractArticle(doc, pageURL)
		if articleTitle != "" {
			title = articleTitle
		}
		template = readabilityTemplate
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(contentHTML) == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoContent, pageURL)
	}

	markdown, err := toMarkdown(contentHTML, pageURL)
	if err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoContent, pageURL)
	}

	return &Result{
		Title:         title,
		Description:   description,
		Markdown:      markdown,
		Template:      template,
		ContentLength: len(markdown),
	}, nil
}

// selectCSS returns the outer HTML of the first configured selector that
// matches, together with the selector that won.
func (e *Extractor) selectCSS(doc *goquery.Document) (content, template string) {
	candidates := fallbackSelectors
	if e.selector != "" {
		candidates = strings.Split(e.selector, ",")
	}

	for _, sel := range candidates {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		fragment, err := goquery.OuterHtml(container)
		if err != nil || strings.TrimSpace(fragment) == "" {
			continue
		}
		return fragment, sel
	}
	return "", ""
}

// selectXPath returns the concatenated HTML of all nodes matched by the
// configured expression, together with the expression that won.
func (e *Extractor) selectXPath(doc *goquery.Document) (content, template string, err error) {
	root := doc.Get(0)
	if root == nil {
		return "", "", nil
	}

	expressions := fallbackExpressions
	if e.selector != "" {
		expressions = []string{e.selector}
	}

	for _, expr := range expressions {
		nodes, qerr := htmlquery.QueryAll(root, expr)
		if qerr != nil {
			return "", "", fmt.Errorf("%w: %q: %v", ErrInvalidExpression, expr, qerr)
		}
		if len(nodes) == 0 {
			continue
		}
		var b strings.Builder
		for _, n := range nodes {
			b.WriteString(htmlquery.OutputHTML(n, true))
		}
		return b.String(), expr, nil
	}
	return "", "", nil
}

// extractArticle runs readability over the cleaned document and returns
// the article body HTML and the article title.
func (e *Extractor) extractArticle(doc *goquery.Document, pageURL string) (content, title string, err error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", "", fmt.Errorf("parse url %q: %w", pageURL, err)
	}

	cleaned, err := doc.Html()
	if err != nil {
		return "", "", fmt.Errorf("render html: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(cleaned), parsed)
	if err != nil {
		return "", "", fmt.Errorf("readability: %w", err)
	}
	return article.Content, strings.TrimSpace(article.Title), nil
}

// toMarkdown converts a content fragment to Markdown. Relative links are
// resolved against the page's scheme and host.
func toMarkdown(contentHTML, pageURL string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if u, err := url.Parse(pageURL); err == nil && u.Scheme != "" && u.Host != "" {
		opts = append(opts, converter.WithDomain(u.Scheme+"://"+u.Host))
	}
	return htmltomarkdown.ConvertString(contentHTML, opts...)
}

// documentTitle extracts the page title using multiple strategies: the
// title element, then og:title, then the first h1.
func documentTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if t := strings.TrimSpace(doc.Find("meta[property='og:title']").AttrOr("content", "")); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// documentDescription extracts the meta description, preferring the
// standard description tag over og:description.
func documentDescription(doc *goquery.Document) string {
	if d := strings.TrimSpace(doc.Find("meta[name='description']").AttrOr("content", "")); d != "" {
		return d
	}
	return strings.TrimSpace(doc.Find("meta[property='og:description']").AttrOr("content", ""))
}
