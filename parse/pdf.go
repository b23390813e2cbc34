package parse

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docdex/docdex"
	"github.com/ledongthuc/pdf"
)

// minPDFPageLen skips near-empty pages (covers, separators).
const minPDFPageLen = 50

// ParsePDF extracts text from a PDF, one document per page.
func ParsePDF(path string, src *docdex.Source) ([]*docdex.Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var docs []*docdex.Document
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if len(text) < minPDFPageLen {
			continue
		}

		doc := docdex.FromSource(src)
		doc.URI = fmt.Sprintf("%s#page=%d", path, pageNum)
		doc.Title = stem
		doc.Section = fmt.Sprintf("Page %d", pageNum)
		doc.Content = text
		docs = append(docs, &doc)
	}
	return docs, nil
}
