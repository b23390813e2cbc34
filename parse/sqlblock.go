package parse

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/docdex/docdex"
)

// SQL block separators, tried in priority order.
var (
	sqlGoRE        = regexp.MustCompile(`(?mi)^\s*GO\s*$`)
	sqlDividerRE   = regexp.MustCompile(`(?m)^--\s*={3,}`)
	sqlSemiBlankRE = regexp.MustCompile(`;\s*\n\s*\n`)
)

const minBlockLen = 30

// ParseSQL splits an SQL file into block-based documents. Blocks keep
// the snippet together with its leading comment as one atomic unit.
func ParseSQL(path string, src *docdex.Source) ([]*docdex.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var docs []*docdex.Document
	for i, block := range splitSQLBlocks(text) {
		if len(block) < minBlockLen {
			continue
		}
		doc := docdex.FromSource(src)
		doc.URI = fmt.Sprintf("%s#block=%d", path, i)
		doc.Title = sqlBlockTitle(block)
		doc.Section = fmt.Sprintf("block-%d", i)
		doc.Content = block
		docs = append(docs, &doc)
	}
	return docs, nil
}

// splitSQLBlocks splits SQL text on the first separator that actually
// divides it: T-SQL GO lines, comment dividers, then semicolon plus
// blank line. An undividable file is one block.
func splitSQLBlocks(text string) []string {
	for _, re := range []*regexp.Regexp{sqlGoRE, sqlDividerRE, sqlSemiBlankRE} {
		parts := re.Split(text, -1)
		if len(parts) > 1 {
			return trimNonEmpty(parts)
		}
	}
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		return []string{trimmed}
	}
	return nil
}

// sqlBlockTitle derives a title from the first comment or statement
// line of a block.
func sqlBlockTitle(block string) string {
	for _, line := range strings.Split(block, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			if title := strings.TrimSpace(strings.TrimLeft(stripped, "-")); title != "" {
				return truncate(title, 100)
			}
			continue
		}
		if stripped != "" && !strings.HasPrefix(stripped, "/*") {
			return truncate(stripped, 100)
		}
	}
	return "SQL block"
}

func trimNonEmpty(parts []string) []string {
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
