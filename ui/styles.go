package ui

import "github.com/charmbracelet/lipgloss"

const (
	ellipsis = "…"

	badgeCross = "✕"
	badgePlus  = "+"
)

var (
	cream     = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	fuchsia   = lipgloss.Color("#EE6FF8")
	green     = lipgloss.Color("#04B575")
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Bold(true).
			Padding(0, 1)

	statusBarStateStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Padding(0, 2)

	cursorStyle   = lipgloss.NewStyle().Foreground(fuchsia).Bold(true)
	readingStyle  = lipgloss.NewStyle().Foreground(gray)
	kanjiStyle    = lipgloss.NewStyle().Foreground(gray).Italic(true)
	crossStyle    = lipgloss.NewStyle().Foreground(red).Bold(true)
	plusStyle     = lipgloss.NewStyle().Foreground(green).Bold(true)
	titleStyle    = lipgloss.NewStyle().Foreground(statusBarNoteFg).Italic(true)
	invalidStyle  = lipgloss.NewStyle().Foreground(gray).Strikethrough(true)
	unknownStyle  = lipgloss.NewStyle().Foreground(statusBarNoteFg)
	primaryStyle  = lipgloss.NewStyle().Foreground(fuchsia)
	menuHeadStyle = lipgloss.NewStyle().Bold(true)

	menuBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(fuchsia).
			Padding(0, 1)
)

func logoView() string {
	return logoStyle.Render("kikitori")
}
