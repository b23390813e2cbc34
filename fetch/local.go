package fetch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/docdex/docdex"
	ignore "github.com/sabhiram/go-gitignore"
)

// Ensure LocalAdapter implements docdex.SourceAdapter at compile time.
var _ docdex.SourceAdapter = (*LocalAdapter)(nil)

// LocalAdapter collects files from an existing local directory.
type LocalAdapter struct{}

// FetchSource returns the files under the source location matching its
// include globs and not matching its exclude globs. A missing directory
// yields zero files, not an error.
func (a *LocalAdapter) FetchSource(_ context.Context, src *docdex.Source, maxItems int) ([]string, error) {
	info, err := os.Stat(src.Location)
	if err != nil || !info.IsDir() {
		return nil, nil
	}
	return collectFiles(src.Location, src.IncludeGlobs, src.ExcludeGlobs, maxItems)
}

// collectFiles walks root collecting files matching includeGlobs (all
// files when empty), dropping excludeGlobs matches, returning a sorted
// deduplicated list capped at maxItems.
func collectFiles(root string, includeGlobs, excludeGlobs []string, maxItems int) ([]string, error) {
	if len(includeGlobs) == 0 {
		includeGlobs = []string{"**/*"}
	}

	var excluder *ignore.GitIgnore
	if len(excludeGlobs) > 0 {
		excluder = ignore.CompileIgnoreLines(excludeGlobs...)
	}

	fsys := os.DirFS(root)
	var files []string
	for _, pattern := range includeGlobs {
		matches, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, docdex.Errorf(docdex.EINVALID, "invalid include glob %q: %v", pattern, err)
		}
		for _, rel := range matches {
			info, err := fs.Stat(fsys, rel)
			if err != nil || info.IsDir() {
				continue
			}
			if excluder != nil && excluder.MatchesPath(rel) {
				continue
			}
			files = append(files, filepath.Join(root, filepath.FromSlash(rel)))
		}
	}

	return sortAndCap(files, maxItems), nil
}
