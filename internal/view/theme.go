// Package view renders controller snapshots as styled terminal text.
// Renderers are pure: they never change the state they are given.
package view

import (
	"charm.land/lipgloss/v2"
)

var (
	indigo = lipgloss.Color("#4F46E5")
	cyan   = lipgloss.Color("#0891B2")
	green  = lipgloss.Color("#16A34A")
	orange = lipgloss.Color("#EA580C")
	red    = lipgloss.Color("#DC2626")
	yellow = lipgloss.Color("#CA8A04")
	dim    = lipgloss.Color("#6B7280")
	border = lipgloss.Color("#D1D5DB")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(indigo)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(dim)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1).
			Width(26)

	cardValueStyle = lipgloss.NewStyle().Bold(true)

	activeRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(indigo)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(red)

	hintStyle = lipgloss.NewStyle().
			Foreground(dim).
			Italic(true)

	matchedStyle = lipgloss.NewStyle().Foreground(green)
	missingStyle = lipgloss.NewStyle().Foreground(red)
	highStyle    = lipgloss.NewStyle().Foreground(red)
	normalStyle  = lipgloss.NewStyle().Foreground(yellow)
	linkStyle    = lipgloss.NewStyle().Foreground(cyan).Underline(true)
)
