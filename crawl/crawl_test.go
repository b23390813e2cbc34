package crawl_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/docdex/docdex/crawl"
	"github.com/docdex/docdex/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// siteFetcher serves a fake site from a url -> html map. robots.txt and
// sitemap.xml requests fail unless present in the map.
func siteFetcher(pages map[string]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) ([]byte, string, error) {
			body, ok := pages[url]
			if !ok {
				return nil, "", fmt.Errorf("HTTP 404 for %s", url)
			}
			contentType := "text/html"
			if strings.HasSuffix(url, "robots.txt") {
				contentType = "text/plain"
			}
			if strings.HasSuffix(url, ".xml") {
				contentType = "application/xml"
			}
			return []byte(body), contentType, nil
		},
	}
}

func TestCrawler(t *testing.T) {
	t.Parallel()

	t.Run("follows same-host links to max depth", func(t *testing.T) {
		t.Parallel()

		pages := map[string]string{
			"https://example.com/docs": `<html><body>
				<a href="/docs/a">A</a>
				<a href="https://example.com/docs/b">B</a>
				<a href="https://other.com/external">External</a>
			</body></html>`,
			"https://example.com/docs/a": `<html><body><a href="/docs/deep">Deep</a></body></html>`,
			"https://example.com/docs/b": `<html><body>b</body></html>`,
			// Linked from depth 1, beyond MaxDepth 1.
			"https://example.com/docs/deep": `<html><body>deep</body></html>`,
		}

		crawler := &crawl.Crawler{
			Fetcher:   siteFetcher(pages),
			MaxDepth:  1,
			RateLimit: 1000,
		}

		saved, err := crawler.Crawl(context.Background(), "https://example.com/docs", t.TempDir())
		require.NoError(t, err)
		assert.Len(t, saved, 3)

		joined := strings.Join(saved, "\n")
		assert.NotContains(t, joined, "other.com")
		assert.NotContains(t, joined, "deep")
	})

	t.Run("depth zero fetches only the start page", func(t *testing.T) {
		t.Parallel()

		pages := map[string]string{
			"https://example.com/docs":   `<html><body><a href="/docs/a">A</a></body></html>`,
			"https://example.com/docs/a": `<html><body>a</body></html>`,
		}

		crawler := &crawl.Crawler{Fetcher: siteFetcher(pages), MaxDepth: 0, RateLimit: 1000}

		saved, err := crawler.Crawl(context.Background(), "https://example.com/docs", t.TempDir())
		require.NoError(t, err)
		assert.Len(t, saved, 1)
	})

	t.Run("page fetch failures do not abort the crawl", func(t *testing.T) {
		t.Parallel()

		pages := map[string]string{
			"https://example.com/docs": `<html><body>
				<a href="/docs/missing">Missing</a>
				<a href="/docs/ok">OK</a>
			</body></html>`,
			"https://example.com/docs/ok": `<html><body>ok</body></html>`,
		}

		crawler := &crawl.Crawler{Fetcher: siteFetcher(pages), MaxDepth: 1, RateLimit: 1000}

		saved, err := crawler.Crawl(context.Background(), "https://example.com/docs", t.TempDir())
		require.NoError(t, err)
		assert.Len(t, saved, 2)
	})

	t.Run("non-HTML responses are not saved or expanded", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) ([]byte, string, error) {
				if strings.HasSuffix(url, "robots.txt") {
					return nil, "", fmt.Errorf("HTTP 404")
				}
				return []byte(`{"json": true}`), "application/json", nil
			},
		}
		crawler := &crawl.Crawler{Fetcher: fetcher, MaxDepth: 1, RateLimit: 1000}

		saved, err := crawler.Crawl(context.Background(), "https://example.com/api", t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, saved)
	})

	t.Run("respects robots.txt disallow", func(t *testing.T) {
		t.Parallel()

		pages := map[string]string{
			"https://example.com/robots.txt": "User-agent: *\nDisallow: /private\n",
			"https://example.com/docs": `<html><body>
				<a href="/private/secret">Secret</a>
				<a href="/docs/open">Open</a>
			</body></html>`,
			"https://example.com/docs/open":      `<html><body>open</body></html>`,
			"https://example.com/private/secret": `<html><body>secret</body></html>`,
		}

		crawler := &crawl.Crawler{Fetcher: siteFetcher(pages), MaxDepth: 1, RateLimit: 1000}

		saved, err := crawler.Crawl(context.Background(), "https://example.com/docs", t.TempDir())
		require.NoError(t, err)
		assert.Len(t, saved, 2)
		assert.NotContains(t, strings.Join(saved, "\n"), "private")
	})

	t.Run("seeds the frontier from the sitemap", func(t *testing.T) {
		t.Parallel()

		pages := map[string]string{
			"https://example.com/robots.txt": "User-agent: *\nSitemap: https://example.com/sitemap_index.xml\n",
			"https://example.com/sitemap_index.xml": `<?xml version="1.0" encoding="UTF-8"?>
				<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
					<sitemap><loc>https://example.com/sitemap_pages.xml</loc></sitemap>
				</sitemapindex>`,
			"https://example.com/sitemap_pages.xml": `<?xml version="1.0" encoding="UTF-8"?>
				<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
					<url><loc>https://example.com/docs/hidden-a</loc></url>
					<url><loc>https://example.com/docs/hidden-b</loc></url>
					<url><loc>https://other.com/elsewhere</loc></url>
				</urlset>`,
			// The start page links to nothing; only the sitemap reaches the rest.
			"https://example.com/docs":          `<html><body>index</body></html>`,
			"https://example.com/docs/hidden-a": `<html><body>a</body></html>`,
			"https://example.com/docs/hidden-b": `<html><body>b</body></html>`,
		}

		crawler := &crawl.Crawler{Fetcher: siteFetcher(pages), MaxDepth: 1, RateLimit: 1000}

		saved, err := crawler.Crawl(context.Background(), "https://example.com/docs", t.TempDir())
		require.NoError(t, err)
		assert.Len(t, saved, 3)
		assert.NotContains(t, strings.Join(saved, "\n"), "other.com")
	})

	t.Run("visits each canonical URL once", func(t *testing.T) {
		t.Parallel()

		var fetches int
		pages := map[string]string{
			"https://example.com/docs": `<html><body>
				<a href="/docs?utm_source=nav">Self</a>
				<a href="/docs/">Self again</a>
				<a href="/docs#section">Self anchored</a>
			</body></html>`,
		}
		base := siteFetcher(pages)
		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) ([]byte, string, error) {
				if !strings.HasSuffix(url, "robots.txt") && !strings.Contains(url, "sitemap") {
					fetches++
				}
				return base.FetchFn(ctx, url)
			},
		}

		crawler := &crawl.Crawler{Fetcher: fetcher, MaxDepth: 2, RateLimit: 1000}

		saved, err := crawler.Crawl(context.Background(), "https://example.com/docs", t.TempDir())
		require.NoError(t, err)
		assert.Len(t, saved, 1)
		assert.Equal(t, 1, fetches)
	})
}
