// Package fetch materializes source content as local files. Each source
// kind has its own adapter: git clone/pull, web download or crawl,
// local directory glob, and flat JSONL datasets.
package fetch

import (
	"context"
	"sort"

	"github.com/docdex/docdex"
)

// Ensure Dispatcher implements docdex.SourceAdapter at compile time.
var _ docdex.SourceAdapter = (*Dispatcher)(nil)

// Dispatcher routes a source to its kind-specific adapter.
type Dispatcher struct {
	Git   docdex.SourceAdapter
	Web   docdex.SourceAdapter
	Local docdex.SourceAdapter
	JSONL docdex.SourceAdapter
}

// FetchSource fetches files for a source using the adapter for its
// kind.
func (d *Dispatcher) FetchSource(ctx context.Context, src *docdex.Source, maxItems int) ([]string, error) {
	var adapter docdex.SourceAdapter
	switch src.Kind {
	case docdex.SourceGit:
		adapter = d.Git
	case docdex.SourceWeb:
		adapter = d.Web
	case docdex.SourceLocal:
		adapter = d.Local
	case docdex.SourceJSONL:
		adapter = d.JSONL
	}
	if adapter == nil {
		return nil, docdex.Errorf(docdex.EINVALID, "source %q: no adapter for source_type %q", src.ID, src.Kind)
	}
	return adapter.FetchSource(ctx, src, maxItems)
}

// sortAndCap deduplicates, sorts and truncates a file list so fetch
// output is deterministic across runs.
func sortAndCap(files []string, maxItems int) []string {
	seen := make(map[string]bool, len(files))
	out := files[:0]
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	if maxItems > 0 && len(out) > maxItems {
		out = out[:maxItems]
	}
	return out
}
