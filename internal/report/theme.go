package report

import "charm.land/lipgloss/v2"

var (
	primary = lipgloss.Color("#8B5CF6")
	accent  = lipgloss.Color("#F97316")
	warn    = lipgloss.Color("#F43F5E")
	text    = lipgloss.Color("#F8FAFC")
	dim     = lipgloss.Color("#94A3B8")
	border  = lipgloss.Color("#334155")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary)

	labelStyle = lipgloss.NewStyle().
			Foreground(dim).
			Width(10)

	valueStyle = lipgloss.NewStyle().
			Foreground(text)

	keyStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(warn).
			Italic(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1)
)
