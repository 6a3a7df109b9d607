package types

// Outcome is what a tab opener observed for a single open request.
type Outcome int

const (
	// Opened means the browser confirmed a new tab.
	Opened Outcome = iota
	// Blocked means the browser refused or the request failed.
	Blocked
	// Indeterminate means no usable answer came back (no handle, timeout).
	Indeterminate
)

func (o Outcome) String() string {
	switch o {
	case Opened:
		return "opened"
	case Blocked:
		return "blocked"
	default:
		return "indeterminate"
	}
}

// Failed reports whether the outcome counts as blocked. Indeterminate is
// reported the same way as blocked.
func (o Outcome) Failed() bool {
	return o != Opened
}

// Mode is the top-level application mode, fixed at load time.
type Mode int

const (
	ModeComposer Mode = iota
	ModeOpener
)

func (m Mode) String() string {
	if m == ModeOpener {
		return "opener"
	}
	return "composer"
}

// Tab is a browser tab read from a Firefox session, used to seed a link.
type Tab struct {
	URL   string
	Title string
}

// Label is the tab title, or the URL for untitled tabs.
func (t *Tab) Label() string {
	if t.Title != "" {
		return t.Title
	}
	return t.URL
}

// Profile represents a Firefox profile.
type Profile struct {
	Name       string
	Path       string // absolute path to profile directory
	IsDefault  bool
	IsRelative bool
}

// SessionData holds the tabs parsed from a Firefox session.
type SessionData struct {
	Tabs    []*Tab
	Profile Profile
}

// URLs returns the tab addresses in session order.
func (s *SessionData) URLs() []string {
	urls := make([]string, 0, len(s.Tabs))
	for _, t := range s.Tabs {
		urls = append(urls, t.URL)
	}
	return urls
}
