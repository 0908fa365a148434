package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	titleSelector       = "#firstHeading"
	mainContentSelector = "#mw-content-text .mw-parser-output"
	defaultTitle        = "Untitled"

	// Fragments at or below this length are discarded as noise.
	minFragmentLength = 10
)

// elementsToRemove lists structural/noise elements stripped from the main
// content before text extraction.
var elementsToRemove = []string{
	"table",
	"style",
	"script",
	"noscript",
	"figure",
	"span.mw-editsection",
	"div.navbox",
	"div.reflist",
	"ol.references",
	"sup.reference",
	"div.toc",
	"div.thumb",
	"div.sidebar",
	"div.infobox",
	".mw-empty-elt",
}

// sectionDenylist filters headings that carry no article content.
var sectionDenylist = map[string]struct{}{
	"Contents":       {},
	"See also":       {},
	"References":     {},
	"External links": {},
	"Notes":          {},
}

// cleanResult holds the cleaned article content.
type cleanResult struct {
	Title       string
	CleanedHTML string
	CleanedText string
}

// cleanArticleHTML strips a Wikipedia page down to its main content text.
// When the main content container cannot be found the raw HTML is returned
// unchanged with empty text; the caller's minimum-length check is the real
// failure signal in that degraded mode.
func cleanArticleHTML(html string) (*cleanResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find(titleSelector).First().Text())
	if title == "" {
		title = defaultTitle
	}

	mainContent := doc.Find(mainContentSelector).First()
	if mainContent.Length() == 0 {
		return &cleanResult{
			Title:       title,
			CleanedHTML: html,
			CleanedText: "",
		}, nil
	}

	mainContent.Find(strings.Join(elementsToRemove, ", ")).Remove()

	var parts []string
	mainContent.Find("p, li").Each(func(_ int, sel *goquery.Selection) {
		text := normalizeWhitespace(sel.Text())
		if len(text) > minFragmentLength {
			parts = append(parts, text)
		}
	})

	cleanedHTML, err := goquery.OuterHtml(mainContent)
	if err != nil {
		return nil, err
	}

	return &cleanResult{
		Title:       title,
		CleanedHTML: cleanedHTML,
		CleanedText: strings.Join(parts, "\n"),
	}, nil
}

// extractSections returns all h2/h3 heading texts from the cleaned content,
// in document order, with edit-link artifacts stripped and non-content
// headings excluded. Duplicates are allowed.
func extractSections(cleanedHTML string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cleanedHTML))
	if err != nil {
		return nil, err
	}

	var sections []string
	doc.Find("h2, h3").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		text = strings.TrimSpace(strings.ReplaceAll(text, "[edit]", ""))
		if text == "" {
			return
		}
		if _, denied := sectionDenylist[text]; denied {
			return
		}
		sections = append(sections, text)
	})

	return sections, nil
}

// normalizeWhitespace collapses runs of whitespace into single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
