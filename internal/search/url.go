package search

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// BuildQueryURL appends the search term and page size to the catalog base
// endpoint. A blank term yields an empty URL, which a Query treats as "no
// query provided".
func BuildQueryURL(base, term string, maxResults int) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", nil
	}
	u, err := parseAbsolute(base)
	if err != nil {
		return "", err
	}
	values := u.Query()
	values.Set("q", term)
	if maxResults > 0 {
		values.Set("maxResults", strconv.Itoa(maxResults))
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

func parseAbsolute(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, invalidURL(fmt.Errorf("empty url"))
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, invalidURL(err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, invalidURL(fmt.Errorf("%q is not an absolute url", raw))
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, invalidURL(fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	return u, nil
}
