// Package parse turns fetched files into documents. A registry
// dispatches each file to a format-specific parser by explicit hint
// first, then by extension; files with no matching parser are skipped
// without error.
package parse

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/docdex/docdex"
)

// Registry maps parser hints and file extensions to parsers.
type Registry struct {
	byHint map[string]docdex.Parser
	byExt  map[string]docdex.Parser
	logger *slog.Logger
}

// NewRegistry creates a Registry with the standard parser set. The HTML
// parser requires an extractor and converter; everything else is
// self-contained.
func NewRegistry(extractor docdex.Extractor, fallback docdex.Extractor, converter docdex.Converter, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	markdown := docdex.ParserFunc(ParseMarkdown)
	html := NewHTMLParser(extractor, fallback, converter)
	proto := docdex.ParserFunc(ParseProto)
	code := docdex.ParserFunc(ParseCode)
	jsonl := docdex.ParserFunc(ParseJSONL)
	sql := docdex.ParserFunc(ParseSQL)
	config := docdex.ParserFunc(ParseConfig)
	pdf := docdex.ParserFunc(ParsePDF)

	return &Registry{
		logger: logger,
		byHint: map[string]docdex.Parser{
			"markdown": markdown,
			"html":     html,
			"proto":    proto,
			"code":     code,
			"jsonl":    jsonl,
			"sql":      sql,
			"config":   config,
			"pdf":      pdf,
		},
		byExt: map[string]docdex.Parser{
			".md":    markdown,
			".rst":   markdown,
			".html":  html,
			".htm":   html,
			".proto": proto,
			".jsonl": jsonl,
			".sql":   sql,
			".conf":  config,
			".cnf":   config,
			".ini":   config,
			".pdf":   pdf,
			".go":    code,
			".py":    code,
			".yaml":  code,
			".yml":   code,
			".toml":  code,
			".json":  code,
			".sh":    code,
			".bash":  code,
		},
	}
}

// Lookup returns the parser for a file, resolving the source's parser
// hint first and falling back to the file extension. Returns nil when
// no parser applies.
func (r *Registry) Lookup(path, hint string) docdex.Parser {
	if hint != "" && hint != "auto" {
		if p, ok := r.byHint[hint]; ok {
			return p
		}
	}
	ext := strings.ToLower(filepath.Ext(path))
	return r.byExt[ext]
}

// ParseFile parses a single file using the appropriate parser. Files
// with no matching parser return zero documents. A parser error is
// logged and swallowed so one bad file never aborts its source.
func (r *Registry) ParseFile(path string, src *docdex.Source) []*docdex.Document {
	parser := r.Lookup(path, src.ParserHint)
	if parser == nil {
		r.logger.Debug("no parser for file", "path", path, "ext", filepath.Ext(path))
		return nil
	}

	docs, err := parser.Parse(path, src)
	if err != nil {
		r.logger.Warn("parse error", "path", path, "error", err)
		return nil
	}
	return docs
}
