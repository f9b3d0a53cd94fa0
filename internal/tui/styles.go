package tui

import "github.com/charmbracelet/lipgloss"

// Palette shared by every screen.
var (
	accent = lipgloss.AdaptiveColor{Light: "125", Dark: "212"}
	muted  = lipgloss.AdaptiveColor{Light: "244", Dark: "241"}
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	hintStyle    = lipgloss.NewStyle().Foreground(muted)

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	rowStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "236", Dark: "252"})
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	barStyle = lipgloss.NewStyle().
			Foreground(muted).
			Background(lipgloss.AdaptiveColor{Light: "254", Dark: "236"}).
			Padding(0, 1)
)
