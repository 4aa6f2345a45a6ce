// Package tui provides an interactive kanban board over the task store.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Stage accent colors, keyed by the stage's color name.
var stageColors = map[string]lipgloss.AdaptiveColor{
	"slate":  {Light: "#475569", Dark: "#94A3B8"},
	"blue":   {Light: "#1D4ED8", Dark: "#60A5FA"},
	"yellow": {Light: "#A16207", Dark: "#FACC15"},
	"green":  {Light: "#15803D", Dark: "#4ADE80"},
}

// Priority colors.
var (
	ColorHigh   = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#FF6B6B"}
	ColorMedium = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
	ColorLow    = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#6EE7B7"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

// Theme holds the board styles for one display mode.
type Theme struct {
	Dark bool

	Column         lipgloss.Style
	ColumnSelected lipgloss.Style
	Task           lipgloss.Style
	TaskSelected   lipgloss.Style
	Muted          lipgloss.Style
	Error          lipgloss.Style
	StatusBar      lipgloss.Style
}

// NewTheme builds the styles for dark or light mode.
func NewTheme(dark bool) Theme {
	pick := func(c lipgloss.AdaptiveColor) lipgloss.Color {
		if dark {
			return lipgloss.Color(c.Dark)
		}
		return lipgloss.Color(c.Light)
	}
	border := lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#374151"}
	accent := lipgloss.AdaptiveColor{Light: "#6B21A8", Dark: "#D8A6FF"}
	fg := lipgloss.AdaptiveColor{Light: "#111827", Dark: "#E5E7EB"}
	statusBg := lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1F2937"}

	column := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(pick(border)).
		Padding(0, 1)

	return Theme{
		Dark:           dark,
		Column:         column,
		ColumnSelected: column.BorderForeground(pick(accent)),
		Task:           lipgloss.NewStyle().Foreground(pick(fg)),
		TaskSelected:   lipgloss.NewStyle().Foreground(pick(accent)).Bold(true),
		Muted:          lipgloss.NewStyle().Foreground(pick(ColorMuted)),
		Error:          lipgloss.NewStyle().Foreground(pick(ColorHigh)).Bold(true),
		StatusBar: lipgloss.NewStyle().
			Background(pick(statusBg)).
			Foreground(pick(fg)).
			Padding(0, 1),
	}
}

// StageTitle renders a column heading in the stage's accent color.
func (t Theme) StageTitle(color, title string) string {
	c, ok := stageColors[color]
	if !ok {
		c = ColorMuted
	}
	fg := c.Light
	if t.Dark {
		fg = c.Dark
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Bold(true).Render(title)
}

// PriorityBadge renders a one-letter priority marker.
func (t Theme) PriorityBadge(p string) string {
	var c lipgloss.AdaptiveColor
	switch p {
	case "high":
		c = ColorHigh
	case "medium":
		c = ColorMedium
	default:
		c = ColorLow
	}
	fg := c.Light
	if t.Dark {
		fg = c.Dark
	}
	label := "?"
	if p != "" {
		label = strings.ToUpper(p[:1])
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Render("[" + label + "]")
}
