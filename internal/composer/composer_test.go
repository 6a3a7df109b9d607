package composer

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/lotas/tablink/internal/linkcodec"
)

type fakeClipboard struct {
	written []string
	err     error
}

func (f *fakeClipboard) WriteText(text string) error {
	if f.err != nil {
		return f.err
	}
	f.written = append(f.written, text)
	return nil
}

var base = linkcodec.Location{Origin: "https://tablink.local", Path: "/"}

func TestNewHasOneEmptyEntry(t *testing.T) {
	c := New(base, &fakeClipboard{})
	if !reflect.DeepEqual(c.Entries(), []string{""}) {
		t.Errorf("entries = %q, want one empty entry", c.Entries())
	}
	if c.Link() != "" {
		t.Errorf("link = %q, want none", c.Link())
	}
}

func TestAddAndUpdateEntry(t *testing.T) {
	c := New(base, &fakeClipboard{})
	if i := c.AddEntry(); i != 1 {
		t.Errorf("AddEntry returned %d, want 1", i)
	}
	c.UpdateEntry(0, " example.com ")
	c.UpdateEntry(1, "b.org")
	c.UpdateEntry(5, "ignored")
	want := []string{" example.com ", "b.org"}
	if !reflect.DeepEqual(c.Entries(), want) {
		t.Errorf("entries = %q, want %q", c.Entries(), want)
	}
}

func TestRemoveEntryKeepsLastRow(t *testing.T) {
	c := New(base, &fakeClipboard{})
	c.UpdateEntry(0, "a.com")
	c.AddEntry()
	c.AddEntry()

	for i := 0; i < 10; i++ {
		c.RemoveEntry(0)
		if c.Len() < 1 {
			t.Fatalf("list shrank to %d", c.Len())
		}
	}
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
	if c.RemoveEntry(0) {
		t.Error("RemoveEntry on last row reported success")
	}
}

func TestRemoveEntryMiddle(t *testing.T) {
	c := New(base, &fakeClipboard{})
	c.UpdateEntry(0, "a")
	c.UpdateEntry(c.AddEntry(), "b")
	c.UpdateEntry(c.AddEntry(), "c")
	if !c.RemoveEntry(1) {
		t.Fatal("RemoveEntry(1) failed")
	}
	if !reflect.DeepEqual(c.Entries(), []string{"a", "c"}) {
		t.Errorf("entries = %q", c.Entries())
	}
	if c.RemoveEntry(7) {
		t.Error("out-of-range remove reported success")
	}
}

func TestGenerateLinkAllBlank(t *testing.T) {
	c := New(base, &fakeClipboard{})
	c.UpdateEntry(0, "   ")
	c.AddEntry()
	if _, ok := c.GenerateLink(); ok {
		t.Error("GenerateLink succeeded with blank entries")
	}
	if c.Link() != "" {
		t.Errorf("link = %q, want none", c.Link())
	}
}

func TestGenerateLinkKeepsPreviousWhenBlank(t *testing.T) {
	c := New(base, &fakeClipboard{})
	c.UpdateEntry(0, "a.com")
	first, ok := c.GenerateLink()
	if !ok {
		t.Fatal("GenerateLink failed")
	}
	c.UpdateEntry(0, "")
	if _, ok := c.GenerateLink(); ok {
		t.Error("GenerateLink succeeded with blank entries")
	}
	if c.Link() != first {
		t.Errorf("link = %q, want previous %q", c.Link(), first)
	}
}

func TestGenerateLinkOverwrites(t *testing.T) {
	c := New(base, &fakeClipboard{})
	c.UpdateEntry(0, "a.com")
	first, _ := c.GenerateLink()
	c.UpdateEntry(c.AddEntry(), "b.com")
	second, _ := c.GenerateLink()
	if first == second {
		t.Fatal("link did not change")
	}
	if !strings.HasPrefix(second, "https://tablink.local/#") {
		t.Errorf("link = %q", second)
	}
	got, ok := linkcodec.Decode("", strings.TrimPrefix(second, "https://tablink.local/#"))
	if !ok || !reflect.DeepEqual(got, []string{"https://a.com", "https://b.com"}) {
		t.Errorf("decoded %q", got)
	}
}

func TestCopyLink(t *testing.T) {
	clip := &fakeClipboard{}
	c := New(base, clip)

	if _, err := c.CopyLink(); !errors.Is(err, ErrNoLink) {
		t.Errorf("err = %v, want ErrNoLink", err)
	}

	c.UpdateEntry(0, "a.com")
	link, _ := c.GenerateLink()
	ack, err := c.CopyLink()
	if err != nil {
		t.Fatalf("CopyLink: %v", err)
	}
	if !c.Copied() {
		t.Error("acknowledgment not shown")
	}
	if len(clip.written) != 1 || clip.written[0] != link {
		t.Errorf("clipboard = %q, want %q", clip.written, link)
	}
	c.ExpireCopied(ack)
	if c.Copied() {
		t.Error("acknowledgment still shown after expiry")
	}
}

func TestCopyLinkFailure(t *testing.T) {
	c := New(base, &fakeClipboard{err: errors.New("no clipboard")})
	c.UpdateEntry(0, "a.com")
	c.GenerateLink()
	if _, err := c.CopyLink(); err == nil {
		t.Fatal("expected error")
	}
	if c.Copied() {
		t.Error("acknowledgment shown after failed copy")
	}
}

func TestStaleExpiryIgnored(t *testing.T) {
	c := New(base, &fakeClipboard{})
	c.UpdateEntry(0, "a.com")
	c.GenerateLink()

	first, _ := c.CopyLink()
	second, _ := c.CopyLink()
	c.ExpireCopied(first)
	if !c.Copied() {
		t.Error("stale expiry cleared a newer acknowledgment")
	}
	c.ExpireCopied(second)
	if c.Copied() {
		t.Error("latest expiry did not clear the acknowledgment")
	}
}

func TestReset(t *testing.T) {
	c := New(base, &fakeClipboard{})
	c.UpdateEntry(0, "a.com")
	c.AddEntry()
	c.GenerateLink()
	ack, _ := c.CopyLink()

	c.Reset()
	if !reflect.DeepEqual(c.Entries(), []string{""}) || c.Link() != "" || c.Copied() {
		t.Errorf("after Reset: entries=%q link=%q copied=%v", c.Entries(), c.Link(), c.Copied())
	}
	c.MarkCopied()
	c.ExpireCopied(ack)
	if !c.Copied() {
		t.Error("pre-reset ack cleared a later acknowledgment")
	}
}

func TestWriteLinkLeavesStateAlone(t *testing.T) {
	clip := &fakeClipboard{}
	c := New(base, clip)
	if err := c.WriteLink("https://tablink.local/#x"); err != nil {
		t.Fatalf("WriteLink: %v", err)
	}
	if !reflect.DeepEqual(clip.written, []string{"https://tablink.local/#x"}) {
		t.Errorf("written = %q", clip.written)
	}
	if c.Copied() {
		t.Error("WriteLink showed the acknowledgment")
	}
}
