package fetch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/crawl"
	"github.com/docdex/docdex/fs"
)

// Ensure WebAdapter implements docdex.SourceAdapter at compile time.
var _ docdex.SourceAdapter = (*WebAdapter)(nil)

// WebAdapter downloads web pages under the working directory. Sources
// with a crawl depth above zero are crawled breadth-first; otherwise
// only the location page is downloaded, cached across runs.
type WebAdapter struct {
	Fetcher   docdex.Fetcher
	Workdir   string
	UserAgent string
	Logger    *slog.Logger
}

// FetchSource returns locally saved page paths for a web source.
func (a *WebAdapter) FetchSource(ctx context.Context, src *docdex.Source, maxItems int) ([]string, error) {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Join(a.Workdir, src.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	if src.CrawlDepth > 0 {
		rateLimit := src.RateLimit
		if rateLimit <= 0 {
			rateLimit = docdex.DefaultCrawlRateLimit
		}
		crawler := &crawl.Crawler{
			Fetcher:   a.Fetcher,
			MaxDepth:  src.CrawlDepth,
			RateLimit: rateLimit,
			UserAgent: a.UserAgent,
			Logger:    logger,
		}
		pages, err := crawler.Crawl(ctx, src.Location, dir)
		if err != nil {
			return nil, err
		}
		return sortAndCap(pages, maxItems), nil
	}

	// Single page, cached across runs.
	dest := filepath.Join(dir, fs.PageFileName(src.Location))
	if _, err := os.Stat(dest); err == nil {
		logger.Debug("web page cached", "url", src.Location, "path", dest)
		return []string{dest}, nil
	}

	logger.Info("web download", "url", src.Location)
	body, _, err := a.Fetcher.Fetch(ctx, src.Location)
	if err != nil {
		return nil, err
	}
	if _, err := fs.WriteFile(dir, fs.PageFileName(src.Location), body); err != nil {
		return nil, err
	}
	return []string{dest}, nil
}
