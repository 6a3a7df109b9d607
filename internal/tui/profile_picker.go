package tui

import (
	"fmt"
	"strings"

	"github.com/lotas/tablink/internal/types"
)

// ProfilePicker is an overlay for choosing the Firefox profile whose open
// tabs are imported into the composer.
type ProfilePicker struct {
	Profiles []types.Profile
	Cursor   int
}

func NewProfilePicker(profiles []types.Profile) ProfilePicker {
	cursor := 0
	for i, p := range profiles {
		if p.IsDefault {
			cursor = i
			break
		}
	}
	return ProfilePicker{Profiles: profiles, Cursor: cursor}
}

func (m *ProfilePicker) MoveUp() {
	if m.Cursor > 0 {
		m.Cursor--
	}
}

func (m *ProfilePicker) MoveDown() {
	if m.Cursor < len(m.Profiles)-1 {
		m.Cursor++
	}
}

func (m ProfilePicker) Selected() types.Profile {
	return m.Profiles[m.Cursor]
}

func (m ProfilePicker) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Padding(0, 1).Render("Import open tabs from:") + "\n\n")

	for i, p := range m.Profiles {
		label := p.Name
		if p.IsDefault {
			label += " (default)"
		}
		if i == m.Cursor {
			b.WriteString(selectedStyle.Render("> "+label) + "\n")
		} else {
			b.WriteString(rowStyle.Render(fmt.Sprintf("  %s", label)) + "\n")
		}
	}

	b.WriteString("\n" + rowStyle.Render("↑↓ navigate · enter import · esc cancel"))
	return boxStyle.Render(b.String())
}
