package articles

import (
	"net/url"
	"strings"
)

// trackingParams lists query parameters stripped before URL comparison.
// These vary per aggregator link to the same story and carry no identity.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_content":  {},
	"utm_term":     {},
	"ref":          {},
}

// NormalizeURL canonicalizes an article link for duplicate comparison:
// tracking query parameters are dropped, the trailing slash is trimmed from
// the path, and the fragment is discarded. Empty or unparseable input
// normalizes to "" and is excluded from URL-based dedup.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	query := parsed.Query()
	for key := range query {
		if _, tracking := trackingParams[key]; tracking {
			query.Del(key)
		}
	}
	parsed.RawQuery = query.Encode()
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.Fragment = ""
	parsed.RawFragment = ""

	return parsed.String()
}
