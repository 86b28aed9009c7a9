// Package tui renders the modifier checklist in a terminal with bubbletea.
package tui

import (
	"fmt"
	"strings"

	"kbmod/internal/checklist"
	"kbmod/internal/modlist"
	"kbmod/internal/tui/styles"
	"kbmod/pkg/types"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// rowOffset is the screen line of the first row: title plus a blank line.
const rowOffset = 2

// Model is the bubbletea model for the modifier checklist.
type Model struct {
	list        *modlist.List
	keys        KeyMap
	help        help.Model
	cursor      int
	abbreviated bool
	status      string
}

// New wraps list. The list keeps firing its own events; the model only
// listens to show the latest bitmask.
func New(list *modlist.List) *Model {
	m := &Model{
		list: list,
		keys: DefaultKeyMap(),
		help: help.New(),
	}
	list.OnBitmaskChanged(func(mask types.Bitmask) {
		m.status = fmt.Sprintf("bitmask 0x%02X", uint32(mask))
	})
	return m
}

// SetAbbreviated switches the summary line to short modifier names.
func (m *Model) SetAbbreviated(abbreviated bool) {
	m.abbreviated = abbreviated
}

// Bitmask returns the current selection.
func (m *Model) Bitmask() types.Bitmask {
	return m.list.Bitmask()
}

// Cursor returns the highlighted row.
func (m *Model) Cursor() int {
	return m.cursor
}

// ShowHelp reports whether the full help is expanded.
func (m *Model) ShowHelp() bool {
	return m.help.ShowAll
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.MouseMsg:
		m.handleMouseMsg(msg)
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.list.Len()-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.list.Len() > 0 {
			m.list.Toggle(m.cursor)
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// handleMouseMsg treats a button release over a row line as a click on that
// row. Wheel input is dropped.
func (m *Model) handleMouseMsg(msg tea.MouseMsg) {
	ev := tea.MouseEvent(msg)
	if ev.IsWheel() || ev.Action != tea.MouseActionRelease {
		return
	}
	row, ok := m.RowAt(ev.Y)
	if !ok {
		return
	}
	m.cursor = row
	m.list.Toggle(row)
}

// RowAt resolves a screen line to a row index.
func (m *Model) RowAt(y int) (int, bool) {
	row := y - rowOffset
	if row < 0 || row >= m.list.Len() {
		return -1, false
	}
	return row, true
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.Theme.Title.Render("Hotkey modifiers"))
	b.WriteString("\n\n")

	model := m.list.Model()
	for i := 0; i < model.Len(); i++ {
		item := model.Item(i)

		cursor := "  "
		if i == m.cursor {
			cursor = styles.Theme.Cursor.Render("> ")
		}
		b.WriteString(cursor)
		b.WriteString(renderRow(item))
		b.WriteString("\n")
	}

	mask := m.list.Bitmask()
	b.WriteString("\n")
	b.WriteString(styles.Theme.Summary.Render(mask.Format(m.abbreviated)))
	if m.status != "" {
		b.WriteString("  ")
		b.WriteString(styles.Theme.Help.Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func renderRow(item *checklist.Item) string {
	if !item.IsCheckable() || types.ParseModifier(item.Text()) == types.ModNull {
		return styles.Theme.Inert.Render("    " + item.Text())
	}
	switch item.CheckState() {
	case checklist.Checked:
		return styles.Theme.Checked.Render("[x] " + item.Text())
	case checklist.PartiallyChecked:
		return styles.Theme.Unchecked.Render("[-] " + item.Text())
	case checklist.Unchecked:
		return styles.Theme.Unchecked.Render("[ ] " + item.Text())
	default:
		return styles.Theme.Unchecked.Render("[?] " + item.Text())
	}
}
