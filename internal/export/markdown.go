package export

import (
	"fmt"
	"strings"
)

// List is a decoded address list and the link it came from.
type List struct {
	Link      string
	Addresses []string
}

// Markdown formats the list as a numbered markdown list.
func Markdown(list List) string {
	var b strings.Builder

	n := len(list.Addresses)
	noun := "URLs"
	if n == 1 {
		noun = "URL"
	}
	fmt.Fprintf(&b, "# %d %s Ready\n", n, noun)
	if list.Link != "" {
		fmt.Fprintf(&b, "> %s\n", list.Link)
	}
	b.WriteByte('\n')

	for i, addr := range list.Addresses {
		fmt.Fprintf(&b, "%d. [%s](%s)\n", i+1, extractDomain(addr), addr)
	}
	return b.String()
}
