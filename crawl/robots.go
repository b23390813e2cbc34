package crawl

import (
	"context"
	"net/url"

	"github.com/docdex/docdex"
	"github.com/temoto/robotstxt"
)

// fetchRobots retrieves and parses robots.txt for the host of baseURL.
// Absence or fetch failure of the robots file must not block crawling,
// so every failure path returns nil (allow everything).
func fetchRobots(ctx context.Context, fetcher docdex.Fetcher, baseURL string) *robotstxt.RobotsData {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	body, _, err := fetcher.Fetch(ctx, robotsURL)
	if err != nil {
		return nil
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil
	}
	return data
}

// allowed consults robots for the given URL. A nil robots allows
// everything.
func allowed(robots *robotstxt.RobotsData, rawURL, userAgent string) bool {
	if robots == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := u.Path
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return robots.TestAgent(path, userAgent)
}
