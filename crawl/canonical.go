package crawl

import (
	"net/url"
	"strings"
)

// trackingParams are query parameters stripped during canonicalization
// to prevent link-parameter explosion of the visited set.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"ref":          true,
	"source":       true,
	"fbclid":       true,
	"gclid":        true,
	"msclkid":      true,
}

// Canonicalize normalizes a URL for use as the crawler's uniqueness key:
// scheme and host are lower-cased, the fragment is stripped, a trailing
// slash is removed from the path (root "/" is preserved), and tracking
// query parameters are dropped. Canonicalize is idempotent:
// Canonicalize(Canonicalize(u)) == Canonicalize(u).
func Canonicalize(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if path := strings.TrimRight(u.Path, "/"); path != "" {
		u.Path = path
	} else {
		u.Path = "/"
	}

	if u.RawQuery != "" {
		values, err := url.ParseQuery(u.RawQuery)
		if err == nil {
			for key := range values {
				if trackingParams[strings.ToLower(key)] {
					values.Del(key)
				}
			}
			// Encode sorts keys, which keeps the result stable across
			// parameter orderings of the same URL.
			u.RawQuery = values.Encode()
		}
	}

	return u.String(), nil
}

// SameHost reports whether two URLs share a network host, ignoring case.
func SameHost(rawURL, baseURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	b, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, b.Host)
}
