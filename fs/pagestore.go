// Package fs provides filesystem helpers for materializing fetched
// content: deterministic page file names and atomic writes, so re-crawls
// overwrite instead of accumulating duplicates.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// maxNameLen bounds generated file names; long URLs are truncated and
// suffixed with a hash of the full URL so same-prefix URLs never
// collide on disk.
const maxNameLen = 200

// PageFileName derives a deterministic file name from a URL: the
// scheme is dropped and path separators and query markers are replaced,
// so the same URL always maps to the same file.
// Example: https://example.com/docs/api?v=2 → example.com_docs_api_v=2.html
func PageFileName(rawURL string) string {
	name := rawURL
	if idx := strings.Index(name, "//"); idx != -1 {
		name = name[idx+2:]
	}
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "?", "_")
	if len(name) > maxNameLen {
		name = fmt.Sprintf("%s-%016x", name[:maxNameLen], xxhash.Sum64String(rawURL))
	}
	if !strings.HasSuffix(name, ".html") {
		name += ".html"
	}
	return name
}

// WriteFile writes data to dir/name atomically: a temp file in the same
// directory is renamed over the target, so readers never observe a
// partial page. Parent directories are created as needed.
func WriteFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, name+".tmp*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	return dest, nil
}
