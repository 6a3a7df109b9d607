package composer

import (
	"errors"
	"strings"
	"time"

	"github.com/lotas/tablink/internal/applog"
	"github.com/lotas/tablink/internal/linkcodec"
)

// CopiedFor is how long the copied acknowledgment stays visible.
const CopiedFor = 2000 * time.Millisecond

// ErrNoLink is returned by CopyLink before any link was generated.
var ErrNoLink = errors.New("no link generated")

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteText(text string) error
}

// Ack identifies one copied acknowledgment. Only the most recent Ack can
// clear the acknowledgment; older ones expire as no-ops.
type Ack uint64

// Composer holds the editable address list and the last generated link.
type Composer struct {
	base    linkcodec.Location
	clip    Clipboard
	entries []string
	link    string
	copied  bool
	ack     Ack
}

// New returns a Composer with a single empty entry.
func New(base linkcodec.Location, clip Clipboard) *Composer {
	return &Composer{
		base:    base,
		clip:    clip,
		entries: []string{""},
	}
}

// Entries returns a copy of the current address list.
func (c *Composer) Entries() []string {
	out := make([]string, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of rows, never less than 1.
func (c *Composer) Len() int {
	return len(c.entries)
}

// Entry returns the value at i, or "" when i is out of range.
func (c *Composer) Entry(i int) string {
	if i < 0 || i >= len(c.entries) {
		return ""
	}
	return c.entries[i]
}

// AddEntry appends an empty row and returns its index.
func (c *Composer) AddEntry() int {
	c.entries = append(c.entries, "")
	return len(c.entries) - 1
}

// RemoveEntry deletes row i. The last remaining row is never removed.
func (c *Composer) RemoveEntry(i int) bool {
	if len(c.entries) <= 1 || i < 0 || i >= len(c.entries) {
		return false
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	return true
}

// UpdateEntry stores value verbatim at row i.
func (c *Composer) UpdateEntry(i int, value string) {
	if i < 0 || i >= len(c.entries) {
		return
	}
	c.entries[i] = value
}

// HasAddresses reports whether any row is non-blank.
func (c *Composer) HasAddresses() bool {
	for _, e := range c.entries {
		if strings.TrimSpace(e) != "" {
			return true
		}
	}
	return false
}

// GenerateLink encodes the non-blank rows and stores the link. With no
// usable rows it does nothing and leaves any earlier link in place.
func (c *Composer) GenerateLink() (string, bool) {
	if !c.HasAddresses() {
		return c.link, false
	}
	c.link = linkcodec.Encode(c.base, c.entries)
	applog.Info("composer.link", "addresses", len(linkcodec.Filter(c.entries)))
	return c.link, true
}

// Link returns the last generated link, "" if none.
func (c *Composer) Link() string {
	return c.link
}

// Copied reports whether the copied acknowledgment is showing.
func (c *Composer) Copied() bool {
	return c.copied
}

// CopyLink writes the link to the clipboard. On success the acknowledgment
// is shown and the returned Ack must be passed to ExpireCopied after
// CopiedFor. Failures are logged and leave the acknowledgment untouched.
func (c *Composer) CopyLink() (Ack, error) {
	if c.link == "" {
		return 0, ErrNoLink
	}
	if err := c.WriteLink(c.link); err != nil {
		return 0, err
	}
	return c.MarkCopied(), nil
}

// WriteLink writes link to the clipboard without touching composer state,
// so it may run off the UI loop. Callers report success with MarkCopied.
func (c *Composer) WriteLink(link string) error {
	if err := c.clip.WriteText(link); err != nil {
		applog.Error("clipboard.write", err)
		return err
	}
	return nil
}

// MarkCopied shows the acknowledgment and supersedes any pending expiry.
func (c *Composer) MarkCopied() Ack {
	c.ack++
	c.copied = true
	return c.ack
}

// ExpireCopied hides the acknowledgment if ack is still the latest one.
func (c *Composer) ExpireCopied(ack Ack) {
	if ack == c.ack {
		c.copied = false
	}
}

// Reset returns the composer to a single empty row with no link.
func (c *Composer) Reset() {
	c.entries = []string{""}
	c.link = ""
	c.copied = false
	c.ack++
}
