package model

import "time"

// Extraction method names accepted by the extractor.
const (
	// MethodCSS selects content with CSS selectors.
	MethodCSS = "css"

	// MethodXPath selects content with an XPath expression.
	MethodXPath = "xpath"

	// MethodAuto detects the main article content heuristically.
	MethodAuto = "auto"
)

// Cleaning profile names, ordered from most to least aggressive.
const (
	// ProfileStrict strips navigation, forms, media, and tables.
	ProfileStrict = "strict"

	// ProfileModerate strips navigation chrome but keeps media and tables.
	ProfileModerate = "moderate"

	// ProfileMinimal strips only scripts and styles.
	ProfileMinimal = "minimal"
)

// ValidExtractionMethod reports whether name is a known extraction method.
func ValidExtractionMethod(name string) bool {
	return name == MethodCSS || name == MethodXPath || name == MethodAuto
}

// ValidCleaningProfile reports whether name is a known cleaning profile.
func ValidCleaningProfile(name string) bool {
	return name == ProfileStrict || name == ProfileModerate || name == ProfileMinimal
}

// CrawledDocument is the extracted result of fetching one URL's content.
// Documents are immutable once produced and consumed exactly once by the
// output organizer.
type CrawledDocument struct {
	// URL is the normalized URL the content was fetched from.
	URL string `json:"url"`

	// Title is the extracted document title. May be empty.
	Title string `json:"title,omitempty"`

	// Description is the page's meta description. May be empty.
	Description string `json:"description,omitempty"`

	// Markdown is the extracted content converted to Markdown.
	// Excluded from JSON so summaries stay small.
	Markdown string `json:"-"`

	// Depth is the hop distance the URL was discovered at.
	Depth int `json:"depth"`

	// Extraction records how and when the content was produced.
	Extraction ExtractionInfo `json:"extraction"`
}

// ExtractionInfo records the method and context of one extraction.
type ExtractionInfo struct {
	// Method is the extraction method used: css, xpath, or auto.
	Method string `json:"method"`

	// Template is the selector, expression, or detector the method ran
	// with, e.g. "article, main" for css or "readability" for auto.
	Template string `json:"template"`

	// UserAgent is the agent string the fetch was issued with.
	UserAgent string `json:"user_agent"`

	// ContentLength is the byte length of the extracted Markdown.
	ContentLength int `json:"content_length"`

	// CrawledAt is when the fetch completed.
	CrawledAt time.Time `json:"crawled_at"`
}
