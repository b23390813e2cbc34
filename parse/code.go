package parse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docdex/docdex"
)

const (
	// maxCodeFileSize skips huge generated or vendored files.
	maxCodeFileSize = 200_000
	// maxConfigExampleSize caps whole-file config ingestion.
	maxConfigExampleSize = 10_000
	minDocCommentLen     = 30
)

// ParseCode extracts documentation-valuable content from source files:
// whole small YAML/TOML/JSON files as config examples, Go doc comments
// and Python docstrings paired with their symbol, and shell script
// header comments. Vendored, generated and test files are skipped.
func ParseCode(path string, src *docdex.Source) ([]*docdex.Document, error) {
	if shouldSkipCode(path) {
		return nil, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxCodeFileSize {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml", ".toml", ".json":
		if len(text) >= maxConfigExampleSize {
			return nil, nil
		}
		doc := docdex.FromSource(src)
		doc.URI = path
		doc.Title = filepath.Base(path)
		doc.Section = "config"
		doc.Content = text
		return []*docdex.Document{&doc}, nil

	case ".go":
		return symbolDocs(path, src, extractGoDocs(text)), nil

	case ".py":
		return symbolDocs(path, src, extractPythonDocs(text)), nil

	case ".sh", ".bash":
		header := shellHeader(text)
		if len(header) <= minDocCommentLen {
			return nil, nil
		}
		doc := docdex.FromSource(src)
		doc.URI = path
		doc.Title = filepath.Base(path)
		doc.Section = "header"
		doc.Content = header
		return []*docdex.Document{&doc}, nil
	}

	return nil, nil
}

// shouldSkipCode filters vendored, generated and test paths that carry
// no documentation value.
func shouldSkipCode(path string) bool {
	norm := filepath.ToSlash(path)
	if strings.Contains(norm, "/vendor/") ||
		strings.Contains(norm, "/node_modules/") ||
		strings.Contains(norm, "/__pycache__/") ||
		strings.Contains(norm, "/tests/") {
		return true
	}
	base := filepath.Base(norm)
	return strings.HasSuffix(base, "_test.go") ||
		strings.HasSuffix(base, "_test.py") ||
		strings.HasPrefix(base, "test_") ||
		strings.HasSuffix(base, ".pb.go") ||
		strings.Contains(base, ".generated.")
}

type symbolDoc struct {
	symbol string
	doc    string
}

// symbolDocs converts extracted (symbol, doc) pairs into documents.
func symbolDocs(path string, src *docdex.Source, pairs []symbolDoc) []*docdex.Document {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var docs []*docdex.Document
	for _, p := range pairs {
		doc := docdex.FromSource(src)
		doc.URI = path
		doc.Title = fmt.Sprintf("%s.%s", stem, p.symbol)
		doc.Section = p.symbol
		doc.Content = p.doc
		docs = append(docs, &doc)
	}
	return docs
}

var goDeclKeywords = map[string]bool{"func": true, "type": true, "var": true, "const": true}

// extractGoDocs collects // comment runs immediately preceding a
// declaration, paired with the declared symbol's name.
func extractGoDocs(text string) []symbolDoc {
	var results []symbolDoc
	var comments []string

	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "//") {
			comments = append(comments, strings.TrimSpace(strings.TrimLeft(stripped, "/")))
			continue
		}

		if len(comments) > 0 && stripped != "" {
			if symbol := goDeclSymbol(stripped); symbol != "" {
				doc := strings.TrimSpace(strings.Join(comments, "\n"))
				if len(doc) > minDocCommentLen {
					results = append(results, symbolDoc{symbol: symbol, doc: doc})
				}
			}
		}
		comments = nil
	}
	return results
}

// goDeclSymbol returns the declared name of a func/type/var/const line,
// or empty when the line is not a declaration.
func goDeclSymbol(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 2 || !goDeclKeywords[fields[0]] {
		return ""
	}
	symbol := fields[1]
	// Method declarations put the receiver first.
	if fields[0] == "func" && strings.HasPrefix(symbol, "(") {
		rest := strings.SplitN(line, ")", 2)
		if len(rest) < 2 {
			return ""
		}
		trailing := strings.Fields(strings.TrimSpace(rest[1]))
		if len(trailing) == 0 {
			return ""
		}
		symbol = trailing[0]
	}
	symbol, _, _ = strings.Cut(symbol, "(")
	symbol, _, _ = strings.Cut(symbol, "[")
	return symbol
}

// extractPythonDocs collects docstrings following def/class lines.
func extractPythonDocs(text string) []symbolDoc {
	var results []symbolDoc
	lines := strings.Split(text, "\n")

	for i := 0; i < len(lines); i++ {
		stripped := strings.TrimSpace(lines[i])
		keyword := ""
		switch {
		case strings.HasPrefix(stripped, "def "):
			keyword = "def"
		case strings.HasPrefix(stripped, "class "):
			keyword = "class"
		default:
			continue
		}

		symbol := strings.TrimSpace(strings.TrimPrefix(stripped, keyword))
		symbol, _, _ = strings.Cut(symbol, "(")
		symbol, _, _ = strings.Cut(symbol, ":")
		symbol = strings.TrimSpace(symbol)

		j := i + 1
		for j < len(lines) && strings.TrimSpace(lines[j]) == "" {
			j++
		}
		if j >= len(lines) || !strings.Contains(lines[j], `"""`) {
			continue
		}

		first := strings.TrimSpace(lines[j])
		if strings.Count(first, `"""`) >= 2 {
			doc := strings.Trim(first, `" `)
			if len(doc) > minDocCommentLen {
				results = append(results, symbolDoc{symbol: symbol, doc: doc})
			}
			i = j
			continue
		}

		docLines := []string{strings.TrimSpace(strings.ReplaceAll(first, `"""`, ""))}
		j++
		for j < len(lines) {
			if strings.Contains(lines[j], `"""`) {
				docLines = append(docLines, strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(lines[j]), `"""`, "")))
				break
			}
			docLines = append(docLines, strings.TrimSpace(lines[j]))
			j++
		}
		doc := strings.TrimSpace(strings.Join(docLines, "\n"))
		if len(doc) > minDocCommentLen {
			results = append(results, symbolDoc{symbol: symbol, doc: doc})
		}
		i = j
	}
	return results
}

// shellHeader returns the leading comment block after the shebang.
func shellHeader(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "#!") {
		lines = lines[1:]
	}
	var header []string
	for _, line := range lines {
		if strings.HasPrefix(line, "#") {
			header = append(header, strings.TrimSpace(strings.TrimLeft(line, "# ")))
			continue
		}
		if strings.TrimSpace(line) != "" {
			break
		}
	}
	return strings.TrimSpace(strings.Join(header, "\n"))
}
