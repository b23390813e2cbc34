// Package goquery provides a selector-based main-content extractor. It
// strips navigation and boilerplate tags and prefers semantic content
// containers, serving as the fallback when trafilatura extraction finds
// nothing.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/docdex/docdex"
)

// removeSelectors are boilerplate elements removed before extraction.
var removeSelectors = []string{
	"nav", "footer", "header", "aside", "script", "style", "noscript", "form",
}

// contentSelectors are tried in order; the first match with enough text
// wins.
var contentSelectors = []string{"article", "main", `[role="main"]`}

// minContentLen is the minimum text length for a container to count as
// real content rather than an empty shell.
const minContentLen = 50

// Ensure Extractor implements docdex.Extractor at compile time.
var _ docdex.Extractor = (*Extractor)(nil)

// Extractor extracts main content using CSS selectors.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract removes boilerplate tags and returns the preferred content
// container's HTML, falling back to <body> and finally the whole
// document.
func (e *Extractor) Extract(rawHTML string) (*docdex.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docdex.Errorf(docdex.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "failed to parse HTML: %v", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	for _, sel := range removeSelectors {
		doc.Find(sel).Remove()
	}

	for _, sel := range contentSelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		if len(strings.TrimSpace(container.Text())) <= minContentLen {
			continue
		}
		return extractResult(title, container)
	}

	if body := doc.Find("body").First(); body.Length() > 0 {
		return extractResult(title, body)
	}

	return extractResult(title, doc.Selection)
}

func extractResult(title string, sel *goquery.Selection) (*docdex.ExtractResult, error) {
	contentHTML, err := goquery.OuterHtml(sel)
	if err != nil {
		return nil, err
	}
	return &docdex.ExtractResult{
		Title:       title,
		ContentHTML: contentHTML,
	}, nil
}
