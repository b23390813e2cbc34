package parse

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/docdex/docdex"
)

var headingRE = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

// RST underline characters, in the order docutils prefers them.
const rstUnderlineChars = "=-~^`_*+#"

const minSectionLen = 20

// ParseMarkdown splits a markdown or RST file into section-based
// documents. Content before the first heading becomes a headingless
// preamble document.
func ParseMarkdown(path string, src *docdex.Source) ([]*docdex.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	title := fileTitle(path)

	var sections []section
	if strings.EqualFold(filepath.Ext(path), ".rst") {
		sections = splitRSTSections(text)
	} else {
		sections = splitMarkdownSections(text)
	}

	var docs []*docdex.Document
	for _, sec := range sections {
		if len(sec.body) < minSectionLen {
			continue
		}
		doc := docdex.FromSource(src)
		doc.URI = path
		doc.Title = title
		doc.Section = sec.heading
		doc.Content = sec.body
		docs = append(docs, &doc)
	}
	return docs, nil
}

type section struct {
	heading string
	body    string
}

// splitMarkdownSections splits text on ATX headings into
// (heading, body) sections.
func splitMarkdownSections(text string) []section {
	matches := headingRE.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []section{{body: strings.TrimSpace(text)}}
	}

	var sections []section
	if preamble := strings.TrimSpace(text[:matches[0][0]]); preamble != "" {
		sections = append(sections, section{body: preamble})
	}

	for i, m := range matches {
		heading := strings.TrimSpace(text[m[4]:m[5]])
		start := m[1]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(text[start:end])
		if body != "" {
			sections = append(sections, section{heading: heading, body: body})
		}
	}
	return sections
}

// splitRSTSections splits text on RST underline-style headings: a
// non-empty line followed by a line of a single repeated underline
// character at least two characters long.
func splitRSTSections(text string) []section {
	lines := strings.Split(text, "\n")
	var sections []section
	var heading string
	var body []string

	flush := func() {
		if b := strings.TrimSpace(strings.Join(body, "\n")); b != "" {
			sections = append(sections, section{heading: heading, body: b})
		}
	}

	for i := 0; i < len(lines); i++ {
		if i+1 < len(lines) && strings.TrimSpace(lines[i]) != "" && isRSTUnderline(lines[i+1]) {
			flush()
			heading = strings.TrimSpace(lines[i])
			body = nil
			i++ // skip the underline
			continue
		}
		body = append(body, lines[i])
	}
	flush()

	if len(sections) == 0 {
		return []section{{body: strings.TrimSpace(text)}}
	}
	return sections
}

// isRSTUnderline reports whether a line consists of a single repeated
// RST underline character, at least two characters long.
func isRSTUnderline(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 2 {
		return false
	}
	c := trimmed[0]
	if !strings.ContainsRune(rstUnderlineChars, rune(c)) {
		return false
	}
	for i := 1; i < len(trimmed); i++ {
		if trimmed[i] != c {
			return false
		}
	}
	return true
}

// fileTitle derives a human-readable title from a file name.
func fileTitle(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	words := strings.Fields(stem)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
