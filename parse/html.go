package parse

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/htmltomarkdown"
)

// minHTMLBlockLen drops converted paragraphs below this length, which
// are almost always menu items or breadcrumbs.
const minHTMLBlockLen = 50

// HTMLParser extracts main page content and converts it to markdown.
// The primary extractor is tried first; when it finds no content node
// the fallback extractor takes over.
type HTMLParser struct {
	extractor docdex.Extractor
	fallback  docdex.Extractor
	converter docdex.Converter
}

// NewHTMLParser creates an HTMLParser. fallback may be nil.
func NewHTMLParser(extractor, fallback docdex.Extractor, converter docdex.Converter) *HTMLParser {
	return &HTMLParser{
		extractor: extractor,
		fallback:  fallback,
		converter: converter,
	}
}

// Parse extracts the main content of an HTML page and emits a single
// document, or none when the page has no usable content.
func (p *HTMLParser) Parse(path string, src *docdex.Source) ([]*docdex.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rawHTML := string(data)
	if strings.TrimSpace(rawHTML) == "" {
		return nil, nil
	}

	result, err := p.extractor.Extract(rawHTML)
	if err != nil && p.fallback != nil && docdex.ErrorCode(err) == docdex.ENOTFOUND {
		result, err = p.fallback.Extract(rawHTML)
	}
	if err != nil {
		return nil, err
	}

	markdown, err := p.converter.Convert(result.ContentHTML)
	if err != nil {
		return nil, err
	}

	content := htmltomarkdown.FilterShortBlocks(markdown, minHTMLBlockLen)
	if len(content) < minHTMLBlockLen {
		return nil, nil
	}

	title := result.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	doc := docdex.FromSource(src)
	doc.URI = path
	doc.Title = title
	doc.Content = content
	return []*docdex.Document{&doc}, nil
}
