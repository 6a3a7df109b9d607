// Package tui is the terminal front end: a composer for building a link
// and an opener for the addresses a link carries.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lotas/tablink/internal/app"
	"github.com/lotas/tablink/internal/composer"
	"github.com/lotas/tablink/internal/firefox"
	"github.com/lotas/tablink/internal/opener"
	"github.com/lotas/tablink/internal/types"
)

// BlockedWarning is shown after an open attempt in which any tab failed.
const BlockedWarning = "Some tabs were blocked. Allow popups for this site and try again."

// --- Messages ---

type copiedMsg struct {
	link string
	err  error
}

type copyExpiredMsg struct{ ack composer.Ack }

type openedMsg struct{ report opener.Report }

type importedMsg struct {
	profile string
	addrs   []string
	err     error
}

// --- Commands ---

func copyLink(c *composer.Composer, link string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{link: link, err: c.WriteLink(link)}
	}
}

func expireCopied(ack composer.Ack) tea.Cmd {
	return tea.Tick(composer.CopiedFor, func(time.Time) tea.Msg {
		return copyExpiredMsg{ack: ack}
	})
}

func openAll(ctx context.Context, op *opener.Opener) tea.Cmd {
	return func() tea.Msg {
		return openedMsg{report: op.OpenAll(ctx)}
	}
}

func importTabs(profile types.Profile) tea.Cmd {
	return func() tea.Msg {
		session, err := firefox.ReadSessionFile(profile.Path)
		if err != nil {
			return importedMsg{profile: profile.Name, err: err}
		}
		return importedMsg{profile: profile.Name, addrs: session.URLs()}
	}
}

// --- Model ---

type Model struct {
	ctx      context.Context
	app      *app.App
	profiles []types.Profile

	// Composer
	input textinput.Model
	focus int

	// Opener
	opening bool
	report  *opener.Report

	picker     ProfilePicker
	showPicker bool

	status string
	width  int
}

// NewModel returns a Model over a. profiles, possibly empty, are offered
// for importing open tabs into the composer.
func NewModel(ctx context.Context, a *app.App, profiles []types.Profile) Model {
	in := textinput.New()
	in.Placeholder = "https://example.com"
	in.Prompt = ""
	in.Focus()

	m := Model{
		ctx:      ctx,
		app:      a,
		profiles: profiles,
		input:    in,
	}
	m.setFocus(0)
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-10, 20)
		return m, nil

	case copiedMsg:
		// Failures are already logged; the acknowledgment just stays hidden.
		c := m.app.Composer()
		if msg.err != nil || msg.link != c.Link() {
			return m, nil
		}
		return m, expireCopied(c.MarkCopied())

	case copyExpiredMsg:
		m.app.Composer().ExpireCopied(msg.ack)
		return m, nil

	case openedMsg:
		m.opening = false
		m.report = &msg.report
		return m, nil

	case importedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Import from %s failed: %v", msg.profile, msg.err)
			return m, nil
		}
		m.appendEntries(msg.addrs)
		m.status = fmt.Sprintf("Imported %d tabs from %s.", len(msg.addrs), msg.profile)
		return m, nil

	case tea.KeyMsg:
		if m.showPicker {
			return m.updatePicker(msg)
		}
		if m.app.Mode() == types.ModeOpener {
			return m.updateOpener(msg)
		}
		return m.updateComposer(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.picker.MoveUp()
	case "down", "j":
		m.picker.MoveDown()
	case "enter":
		m.showPicker = false
		return m, importTabs(m.picker.Selected())
	case "esc":
		m.showPicker = false
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateComposer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.app.Composer()
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		m.setFocus(c.AddEntry())
		return m, nil
	case "up", "shift+tab":
		m.setFocus(m.focus - 1)
		return m, nil
	case "down", "tab":
		m.setFocus(m.focus + 1)
		return m, nil
	case "ctrl+d":
		if c.RemoveEntry(m.focus) {
			m.setFocus(m.focus)
		}
		return m, nil
	case "ctrl+g":
		m.status = ""
		if _, ok := c.GenerateLink(); !ok {
			m.status = "Add at least one URL first."
		}
		return m, nil
	case "ctrl+y":
		if c.Link() == "" {
			return m, nil
		}
		return m, copyLink(c, c.Link())
	case "ctrl+o":
		if len(m.profiles) == 0 {
			m.status = "No Firefox profiles found."
			return m, nil
		}
		m.picker = NewProfilePicker(m.profiles)
		m.showPicker = true
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	c.UpdateEntry(m.focus, m.input.Value())
	return m, cmd
}

func (m Model) updateOpener(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "enter", "o":
		if m.opening {
			return m, nil
		}
		m.opening = true
		m.report = nil
		return m, openAll(m.ctx, m.app.Opener())
	case "b", "esc":
		if m.opening {
			return m, nil
		}
		m.app.GoBack()
		m.report = nil
		m.status = ""
		m.setFocus(0)
		return m, nil
	}
	return m, nil
}

// setFocus moves the cursor to row i, clamped to the list, and loads the
// row into the input.
func (m *Model) setFocus(i int) {
	c := m.app.Composer()
	i = max(0, min(i, c.Len()-1))
	m.focus = i
	m.input.SetValue(c.Entry(i))
	m.input.CursorEnd()
}

// appendEntries fills the trailing empty row and then adds rows.
func (m *Model) appendEntries(addrs []string) {
	c := m.app.Composer()
	for _, a := range addrs {
		i := c.Len() - 1
		if strings.TrimSpace(c.Entry(i)) != "" {
			i = c.AddEntry()
		}
		c.UpdateEntry(i, a)
	}
	m.setFocus(c.Len() - 1)
}

func (m Model) View() string {
	if m.showPicker {
		return lipgloss.Place(m.width, 20, lipgloss.Center, lipgloss.Center, m.picker.View())
	}

	header := titleStyle.Padding(0, 1).Render("tablink") + locationStyle.Render(m.app.Location().String())

	var body, help string
	if m.app.Mode() == types.ModeOpener {
		body = m.openerView()
		help = "enter/o open all · b back · q quit"
	} else {
		body = m.composerView()
		help = "enter add · ↑↓ move · ctrl+d remove · ctrl+g generate · ctrl+y copy · ctrl+o import · esc quit"
	}

	parts := []string{header, "", body}
	if m.status != "" {
		parts = append(parts, rowStyle.Render(statusStyle.Render(m.status)))
	}
	parts = append(parts, "", helpStyle.Render(help))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) composerView() string {
	c := m.app.Composer()
	var b strings.Builder
	for i, entry := range c.Entries() {
		idx := indexStyle.Render(fmt.Sprintf("%2d.", i+1))
		var value string
		switch {
		case i == m.focus:
			value = m.input.View()
		case entry == "":
			value = placeholder.Render(m.input.Placeholder)
		default:
			value = entry
		}
		cursor := "  "
		if i == m.focus {
			cursor = "> "
		}
		b.WriteString(rowStyle.Render(cursor+idx+" "+value) + "\n")
	}

	if link := c.Link(); link != "" {
		b.WriteString("\n" + linkBoxStyle.Render(link) + "\n")
		if c.Copied() {
			b.WriteString(rowStyle.Render(copiedStyle.Render("Copied!")) + "\n")
		}
	} else if !c.HasAddresses() {
		b.WriteString("\n" + rowStyle.Render(placeholder.Render("Enter a URL to generate a link.")) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) openerView() string {
	op := m.app.Opener()
	addrs := op.Addresses()

	var b strings.Builder
	noun := "URLs"
	if len(addrs) == 1 {
		noun = "URL"
	}
	b.WriteString(rowStyle.Render(titleStyle.Render(fmt.Sprintf("%d %s Ready", len(addrs), noun))) + "\n\n")
	for i, addr := range addrs {
		b.WriteString(rowStyle.Render(indexStyle.Render(fmt.Sprintf("%2d.", i+1))+" "+addr) + "\n")
	}

	switch {
	case m.opening:
		b.WriteString("\n" + rowStyle.Render("Opening tabs...") + "\n")
	case m.report != nil:
		b.WriteString("\n" + rowStyle.Render(fmt.Sprintf("Opened %d of %d tabs.", m.report.Opened(), len(addrs))) + "\n")
		if op.Blocked() {
			b.WriteString(rowStyle.Render(warnStyle.Render(BlockedWarning)) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
