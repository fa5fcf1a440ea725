package tui

import "github.com/charmbracelet/lipgloss"

// Colors used across the screen.
var (
	colorAccent = lipgloss.Color("#7D56F4")
	colorGood   = lipgloss.Color("#04B575")
	colorBad    = lipgloss.Color("#FF5F87")
	colorMuted  = lipgloss.Color("#626262")
	colorText   = lipgloss.Color("#FAFAFA")
)

// styles groups the lipgloss styles of the game screen.
type styles struct {
	Header       lipgloss.Style
	Route        lipgloss.Style
	Status       lipgloss.Style
	PageTitle    lipgloss.Style
	Excerpt      lipgloss.Style
	Pane         lipgloss.Style
	FocusedPane  lipgloss.Style
	OutlineItem  lipgloss.Style
	OutlineFocus lipgloss.Style
	Subsection   lipgloss.Style
	ErrorBox     lipgloss.Style
	WonBox       lipgloss.Style
	Notice       lipgloss.Style
	Muted        lipgloss.Style
}

// defaultStyles returns the default theme.
func defaultStyles() styles {
	pane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(0, 1)

	return styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Background(colorAccent).
			Padding(0, 1),
		Route: lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true),
		Status: lipgloss.NewStyle().
			Foreground(colorMuted),
		PageTitle: lipgloss.NewStyle().
			Bold(true).
			Underline(true),
		Excerpt: lipgloss.NewStyle().
			Foreground(colorText).
			Italic(true),
		Pane:        pane,
		FocusedPane: pane.BorderForeground(colorAccent),
		OutlineItem: lipgloss.NewStyle().
			Foreground(colorText),
		OutlineFocus: lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorAccent),
		Subsection: lipgloss.NewStyle().
			Foreground(colorMuted).
			PaddingLeft(2),
		ErrorBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBad).
			Foreground(colorBad).
			Padding(0, 1),
		WonBox: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorGood).
			Foreground(colorGood).
			Bold(true).
			Padding(1, 2),
		Notice: lipgloss.NewStyle().
			Foreground(colorGood),
		Muted: lipgloss.NewStyle().
			Foreground(colorMuted),
	}
}
