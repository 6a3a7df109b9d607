// Package analyzer finds addresses that point at the same page.
package analyzer

import (
	"net/url"
	"sort"
	"strings"
)

// CanonicalURL reduces rawURL to a comparison key: the fragment is dropped,
// query values are sorted, and a trailing slash is removed from non-root
// paths. Unparseable input is returned unchanged.
func CanonicalURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Fragment = ""
	params := u.Query()
	for k := range params {
		sort.Strings(params[k])
	}
	u.RawQuery = params.Encode()
	u.Host = strings.ToLower(u.Host)
	result := u.String()
	if strings.HasSuffix(result, "/") && result != u.Scheme+"://"+u.Host+"/" {
		result = strings.TrimRight(result, "/")
	}
	return result
}

// Dedupe keeps the first occurrence of each canonical address, in order,
// and reports how many later copies were dropped.
func Dedupe(addresses []string) ([]string, int) {
	seen := make(map[string]bool, len(addresses))
	kept := make([]string, 0, len(addresses))
	for _, a := range addresses {
		key := CanonicalURL(a)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, a)
	}
	return kept, len(addresses) - len(kept)
}
