package styles

import "github.com/charmbracelet/lipgloss"

// Theme defines the core UI styles
var Theme = struct {
	Title     lipgloss.Style
	Checked   lipgloss.Style
	Unchecked lipgloss.Style
	Inert     lipgloss.Style
	Cursor    lipgloss.Style
	Summary   lipgloss.Style
	Help      lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7B61FF")),
	Checked: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#73F59F")).
		Bold(true),
	Unchecked: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")),
	Inert: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666")).
		Italic(true),
	Cursor: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7B61FF")).
		Bold(true),
	Summary: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5A9")),
}
