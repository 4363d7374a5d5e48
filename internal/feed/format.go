package feed

import "strings"

type Format string

const (
	FORMAT_RSS  Format = "rss"
	FORMAT_ATOM Format = "atom"
	FORMAT_JSON Format = "json"
)

// ParseFormat maps a URL extension to a feed format. Unknown values are not
// feeds.
func ParseFormat(value string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimPrefix(value, "."))) {
	case FORMAT_RSS:
		return FORMAT_RSS, true
	case FORMAT_ATOM:
		return FORMAT_ATOM, true
	case FORMAT_JSON:
		return FORMAT_JSON, true
	default:
		return "", false
	}
}
