package linkcodec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// QueryParam is the query parameter carrying a comma-separated address list.
const QueryParam = "urls"

// minQueryAddrLen drops degenerate query entries: "https://" plus at least one character.
const minQueryAddrLen = 9

// Location is the part of a page URL the codec reads and writes.
type Location struct {
	Origin   string // scheme://host[:port]
	Path     string
	RawQuery string // without the leading "?"
	Fragment string // raw, still percent-encoded, without the leading "#"
}

// Base returns origin and path with no query or fragment.
func (l Location) Base() string {
	return l.Origin + l.Path
}

// String reassembles the full URL.
func (l Location) String() string {
	s := l.Base()
	if l.RawQuery != "" {
		s += "?" + l.RawQuery
	}
	if l.Fragment != "" {
		s += "#" + l.Fragment
	}
	return s
}

// ParseLocation splits a link into a Location. The fragment is kept
// verbatim and never validated here, so a malformed payload reaches Decode
// and fails there silently instead of rejecting the whole link.
func ParseLocation(raw string) (Location, error) {
	head, fragment, _ := strings.Cut(strings.TrimSpace(raw), "#")
	u, err := url.Parse(head)
	if err != nil {
		return Location{}, fmt.Errorf("parse link: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return Location{}, fmt.Errorf("parse link: %q is not an absolute URL", raw)
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return Location{
		Origin:   u.Scheme + "://" + u.Host,
		Path:     path,
		RawQuery: u.RawQuery,
		Fragment: fragment,
	}, nil
}

// Normalize prefixes https:// unless the address already carries an
// http:// or https:// scheme.
func Normalize(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	return "https://" + addr
}

// Filter returns the non-blank addresses, unmodified, in order.
func Filter(addresses []string) []string {
	var out []string
	for _, a := range addresses {
		if strings.TrimSpace(a) != "" {
			out = append(out, a)
		}
	}
	return out
}

// Encode builds <origin><path>#<payload> for the non-blank addresses.
// It returns "" when nothing survives filtering; callers are expected to
// check for that before asking for a link.
func Encode(base Location, addresses []string) string {
	valid := Filter(addresses)
	if len(valid) == 0 {
		return ""
	}
	normalized := make([]string, len(valid))
	for i, a := range valid {
		normalized[i] = Normalize(a)
	}
	return base.Base() + "#" + EscapeComponent(marshalArray(normalized))
}

// marshalArray renders the list the way JSON.stringify does: no HTML
// escaping, no trailing newline.
func marshalArray(addresses []string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// A []string cannot fail to encode.
	_ = enc.Encode(addresses)
	return strings.TrimSuffix(buf.String(), "\n")
}

// Decode resolves an address list from the urls query parameter or, failing
// that, from the fragment. The bool is false when neither form yields any
// address; that is a normal outcome, not an error.
func Decode(urlsParam, fragment string) ([]string, bool) {
	if addrs := decodeQuery(urlsParam); len(addrs) > 0 {
		return addrs, true
	}
	if addrs := decodeFragment(fragment); len(addrs) > 0 {
		return addrs, true
	}
	return nil, false
}

// DecodeLocation reads the urls parameter and fragment of loc and decodes them.
func DecodeLocation(loc Location) ([]string, bool) {
	return Decode(queryValue(loc.RawQuery, QueryParam), loc.Fragment)
}

// queryValue returns the first value of key in rawQuery. Pairs are split on
// '&' only, so a ';' inside a value is kept the way browsers keep it.
func queryValue(rawQuery, key string) string {
	for _, pair := range strings.Split(rawQuery, "&") {
		k, v, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(k)
		if err != nil || name != key {
			continue
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		return value
	}
	return ""
}

func decodeQuery(param string) []string {
	if param == "" {
		return nil
	}
	var out []string
	for _, piece := range strings.Split(param, ",") {
		addr := Normalize(strings.TrimSpace(piece))
		if len(addr) < minQueryAddrLen {
			continue
		}
		out = append(out, addr)
	}
	return out
}

func decodeFragment(fragment string) []string {
	fragment = strings.TrimPrefix(fragment, "#")
	if fragment == "" {
		return nil
	}
	decoded, err := url.PathUnescape(fragment)
	if err != nil {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(decoded), &raw); err != nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var addr string
		if err := json.Unmarshal(item, &addr); err != nil {
			return nil
		}
		if strings.TrimSpace(addr) == "" {
			continue
		}
		out = append(out, Normalize(addr))
	}
	return out
}
