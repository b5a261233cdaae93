package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/devoperand/crawl4ai-scraper/internal/model"
)

// profileStripTags maps each cleaning profile to the elements it removes
// before content selection and Markdown conversion. Each profile is a
// superset of the one below it.
var profileStripTags = map[string][]string{
	model.ProfileMinimal: {
		"script", "style", "noscript",
	},
	model.ProfileModerate: {
		"script", "style", "noscript",
		"nav", "header", "footer", "aside", "form", "iframe",
	},
	model.ProfileStrict: {
		"script", "style", "noscript",
		"nav", "header", "footer", "aside", "form", "iframe",
		"figure", "img", "svg", "button", "table",
	},
}

// applyProfile removes the profile's strip list from the document in place.
// Unknown profile names fall back to the moderate list.
func applyProfile(doc *goquery.Document, profile string) {
	tags, ok := profileStripTags[profile]
	if !ok {
		tags = profileStripTags[model.ProfileModerate]
	}
	doc.Find(strings.Join(tags, ", ")).Remove()
}
