package export

import (
	"encoding/json"
	"net/url"
)

type jsonExport struct {
	Link      string        `json:"link,omitempty"`
	Count     int           `json:"count"`
	Addresses []jsonAddress `json:"addresses"`
}

type jsonAddress struct {
	Index  int    `json:"index"`
	URL    string `json:"url"`
	Domain string `json:"domain"`
}

// JSON formats a decoded address list as a JSON document.
func JSON(list List) (string, error) {
	out := jsonExport{
		Link:      list.Link,
		Count:     len(list.Addresses),
		Addresses: make([]jsonAddress, 0, len(list.Addresses)),
	}
	for i, addr := range list.Addresses {
		out.Addresses = append(out.Addresses, jsonAddress{
			Index:  i + 1,
			URL:    addr,
			Domain: extractDomain(addr),
		})
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Hostname()
}
