package parse

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/docdex/docdex"
)

var (
	configSectionRE = regexp.MustCompile(`(?m)^\[([^\]]+)\]`)
	configDividerRE = regexp.MustCompile(`(?m)^#\s*-{3,}`)
	blankLineRE     = regexp.MustCompile(`\n\s*\n`)
)

// ParseConfig splits a config file (postgresql.conf, my.cnf and the
// like) into block-based documents keeping parameter groups together
// with their comment explanations.
func ParseConfig(path string, src *docdex.Source) ([]*docdex.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var docs []*docdex.Document
	for i, blk := range splitConfigBlocks(text) {
		if len(blk.body) < minBlockLen {
			continue
		}
		doc := docdex.FromSource(src)
		doc.URI = fmt.Sprintf("%s#section=%d", path, i)
		doc.Title = fmt.Sprintf("%s - %s", filepath.Base(path), blk.heading)
		doc.Section = blk.heading
		doc.Content = blk.body
		docs = append(docs, &doc)
	}
	return docs, nil
}

// splitConfigBlocks splits config text into named blocks, trying INI
// [section] headers, then # --- comment dividers, then blank-line
// separated parameter groups.
func splitConfigBlocks(text string) []section {
	if matches := configSectionRE.FindAllStringSubmatchIndex(text, -1); len(matches) > 0 {
		var blocks []section
		if preamble := strings.TrimSpace(text[:matches[0][0]]); preamble != "" {
			blocks = append(blocks, section{heading: "global", body: preamble})
		}
		for i, m := range matches {
			name := strings.TrimSpace(text[m[2]:m[3]])
			start := m[1]
			end := len(text)
			if i+1 < len(matches) {
				end = matches[i+1][0]
			}
			if body := strings.TrimSpace(text[start:end]); body != "" {
				blocks = append(blocks, section{heading: name, body: body})
			}
		}
		return blocks
	}

	if parts := configDividerRE.Split(text, -1); len(parts) > 1 {
		return nameBlocks(parts, "section")
	}

	if groups := blankLineRE.Split(text, -1); len(groups) > 1 {
		return nameBlocks(groups, "group")
	}

	if trimmed := strings.TrimSpace(text); trimmed != "" {
		return []section{{heading: "config", body: trimmed}}
	}
	return nil
}

// nameBlocks names each non-empty part after its first comment line,
// falling back to a positional label.
func nameBlocks(parts []string, label string) []section {
	var blocks []section
	for i, part := range parts {
		stripped := strings.TrimSpace(part)
		if stripped == "" {
			continue
		}
		name := fmt.Sprintf("%s-%d", label, i)
		for _, line := range strings.Split(stripped, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "#") && len(line) > 2 {
				name = truncate(strings.TrimSpace(strings.TrimLeft(line, "# ")), 80)
				break
			}
		}
		blocks = append(blocks, section{heading: name, body: stripped})
	}
	return blocks
}
