package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#f59e0b")
	muted  = lipgloss.Color("#94a3b8")
	errRed = lipgloss.Color("#ef4444")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	botStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0a0e14")).
			Background(accent).
			Padding(0, 1)
	optionStyle   = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().PaddingLeft(1).Foreground(accent).Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(muted).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(errRed)
	progressStyle = lipgloss.NewStyle().Foreground(muted)
)
