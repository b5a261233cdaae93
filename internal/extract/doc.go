// Package extract converts fetched HTML pages into Markdown documents.
//
// An Extractor is configured once per session with an extraction method
// and a cleaning profile:
//
//   - css: goquery selector lookup, first matching selector wins
//   - xpath: htmlquery expression, all matched nodes concatenated
//   - auto: go-readability article extraction
//
// Cleaning profiles strip noise elements before selection. minimal
// removes script, style, and noscript; moderate also removes structural
// chrome (nav, header, footer, aside, form, iframe); strict additionally
// removes figures, images, svg, buttons, and tables.
//
// The selected fragment is converted to Markdown with html-to-markdown,
// resolving relative links against the page origin. Extraction also
// captures the page title and meta description for document front matter.
//
// # Usage
//
//	ex, err := extract.New(model.MethodCSS, "article.docs", model.ProfileModerate)
//	if err != nil {
//	    return err
//	}
//	res, err := ex.Extract("https://example.com/docs/intro", rawHTML)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Title, res.ContentLength)
package extract
