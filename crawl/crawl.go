// Package crawl provides a polite breadth-first web crawler: URL
// canonicalization, robots.txt compliance, exact rate limiting, and
// same-host link expansion, saving reachable HTML pages to a local
// working directory.
package crawl

import (
	"context"
	"log/slog"
	"strings"

	"github.com/docdex/docdex"
	"github.com/docdex/docdex/fs"
	"golang.org/x/time/rate"
)

// maxCrawlPages limits the number of pages saved per crawl to prevent
// runaway crawls on large sites.
const maxCrawlPages = 1000

// DefaultUserAgent identifies the crawler to robots.txt.
const DefaultUserAgent = "docdex"

// Crawler performs a breadth-first crawl from a start URL. Crawling is
// single-stream per source: one in-flight request at a time, so the
// rate limit is exact.
type Crawler struct {
	Fetcher   docdex.Fetcher
	MaxDepth  int     // 0 = start page only
	RateLimit float64 // requests per second
	UserAgent string
	Logger    *slog.Logger
}

// queueItem is one BFS frontier entry.
type queueItem struct {
	url   string
	depth int
}

// Crawl walks same-host pages reachable from startURL within MaxDepth
// and saves each HTML page under workdir with a deterministic name.
// Per-page fetch failures are logged and skipped; only an unusable start
// URL or context cancellation abort the crawl.
func (c *Crawler) Crawl(ctx context.Context, startURL, workdir string) ([]string, error) {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := c.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	start, err := Canonicalize(startURL)
	if err != nil {
		return nil, docdex.Errorf(docdex.EINVALID, "invalid start URL %q: %v", startURL, err)
	}

	robots := fetchRobots(ctx, c.Fetcher, start)

	queue := []queueItem{{url: start, depth: 0}}

	// Sitemap URLs join the frontier at depth 1 so their links still
	// expand on deeper crawls.
	if c.MaxDepth > 0 {
		for _, u := range discoverSitemapURLs(ctx, c.Fetcher, start) {
			if canon, err := Canonicalize(u); err == nil {
				queue = append(queue, queueItem{url: canon, depth: 1})
			}
		}
	}

	// Burst of 1: no two requests closer than 1/RateLimit apart.
	var limiter *rate.Limiter
	if c.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.RateLimit), 1)
	}

	visited := make(map[string]bool)
	var saved []string

	for len(queue) > 0 {
		if ctx.Err() != nil {
			return saved, ctx.Err()
		}
		if len(saved) >= maxCrawlPages {
			logger.Warn("crawl page limit reached", "start_url", start, "pages", len(saved))
			break
		}

		item := queue[0]
		queue = queue[1:]

		canon, err := Canonicalize(item.url)
		if err != nil || visited[canon] {
			continue
		}
		visited[canon] = true

		if !allowed(robots, canon, userAgent) {
			logger.Debug("robots blocked", "url", canon)
			continue
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return saved, err
			}
		}

		body, contentType, err := c.Fetcher.Fetch(ctx, canon)
		if err != nil {
			logger.Warn("crawl fetch failed", "url", canon, "error", err)
			continue
		}

		if !isHTML(contentType) {
			continue
		}

		path, err := fs.WriteFile(workdir, fs.PageFileName(canon), body)
		if err != nil {
			logger.Warn("crawl save failed", "url", canon, "error", err)
			continue
		}
		saved = append(saved, path)
		logger.Info("crawl page", "page", len(saved), "queue", len(queue), "url", canon)

		if item.depth < c.MaxDepth {
			for _, link := range extractLinks(string(body), canon) {
				target, err := Canonicalize(link)
				if err != nil {
					continue
				}
				if visited[target] || !SameHost(target, start) {
					continue
				}
				queue = append(queue, queueItem{url: target, depth: item.depth + 1})
			}
		}
	}

	logger.Info("crawl complete", "start_url", start, "pages", len(saved))
	return saved, nil
}

// isHTML reports whether a content type warrants link expansion.
func isHTML(contentType string) bool {
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml")
}
