package crawl

import (
	"bufio"
	"context"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/docdex/docdex"
)

// maxSitemapDepth bounds sitemap-index recursion.
const maxSitemapDepth = 2

// discoverSitemapURLs seeds a crawl from the site's sitemap when one
// exists: robots.txt Sitemap directives are tried first, then
// /sitemap.xml. Sitemap indexes are resolved recursively. Only same-host
// URLs are returned. Any failure yields an empty list, never an error,
// since a missing sitemap must not block crawling.
func discoverSitemapURLs(ctx context.Context, fetcher docdex.Fetcher, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	root := base.Scheme + "://" + base.Host

	sitemaps := sitemapsFromRobots(ctx, fetcher, root)
	if len(sitemaps) == 0 {
		sitemaps = []string{root + "/sitemap.xml"}
	}

	seen := make(map[string]bool)
	var urls []string
	for _, sm := range sitemaps {
		for _, u := range readSitemap(ctx, fetcher, sm, 0) {
			if seen[u] || !SameHost(u, baseURL) {
				continue
			}
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}

// sitemapsFromRobots scans robots.txt for Sitemap directives.
func sitemapsFromRobots(ctx context.Context, fetcher docdex.Fetcher, root string) []string {
	body, _, err := fetcher.Fetch(ctx, root+"/robots.txt")
	if err != nil {
		return nil
	}

	var sitemaps []string
	scanner := bufio.NewScanner(strings.NewReader(string(body)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			if u := strings.TrimSpace(line[len("sitemap:"):]); u != "" {
				sitemaps = append(sitemaps, u)
			}
		}
	}
	return sitemaps
}

// readSitemap fetches one sitemap document and returns its page URLs,
// following <sitemapindex> entries up to maxSitemapDepth.
func readSitemap(ctx context.Context, fetcher docdex.Fetcher, sitemapURL string, depth int) []string {
	if depth > maxSitemapDepth {
		return nil
	}

	body, _, err := fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil
	}
	root := doc.Root()
	if root == nil {
		return nil
	}

	var urls []string
	switch root.Tag {
	case "sitemapindex":
		for _, sm := range root.SelectElements("sitemap") {
			if loc := sm.SelectElement("loc"); loc != nil {
				urls = append(urls, readSitemap(ctx, fetcher, strings.TrimSpace(loc.Text()), depth+1)...)
			}
		}
	case "urlset":
		for _, u := range root.SelectElements("url") {
			if loc := u.SelectElement("loc"); loc != nil {
				if text := strings.TrimSpace(loc.Text()); text != "" {
					urls = append(urls, text)
				}
			}
		}
	}
	return urls
}
