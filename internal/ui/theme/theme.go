// Package theme holds the terminal styles used by the command line output.
package theme

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/yokdil/internal/mastery"
)

// Color palette
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#EAB308") // Amber
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	TableHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(Secondary)
)

// States
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Streak = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Foreground(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Foreground(Border)
)

var levelColors = map[mastery.Level]lipgloss.Style{
	mastery.New:      lipgloss.NewStyle().Foreground(TextDim),
	mastery.Learning: lipgloss.NewStyle().Foreground(Warning),
	mastery.Review:   lipgloss.NewStyle().Foreground(Secondary),
	mastery.Mastered: lipgloss.NewStyle().Foreground(Success).Bold(true),
}

// Level renders a mastery level with its symbol in the level's color.
func Level(l mastery.Level) string {
	st, ok := levelColors[l]
	if !ok {
		st = Body
	}
	return st.Render(l.Symbol() + " " + l.Label())
}

// Bar renders a width-cell progress bar filled to ratio (clamped to [0, 1]).
func Bar(ratio float64, width int) string {
	if width <= 0 {
		return ""
	}
	ratio = max(0, min(1, ratio))
	filled := int(ratio*float64(width) + 0.5)
	return ProgressFilled.Render(strings.Repeat("█", filled)) +
		ProgressEmpty.Render(strings.Repeat("░", width-filled))
}

// Rule is a horizontal separator of n box-drawing cells.
func Rule(n int) string {
	return Subtitle.Render(strings.Repeat("─", n))
}
