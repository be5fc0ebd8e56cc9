package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles derives the panel styles from a theme.
type styles struct {
	header  lipgloss.Style
	panel   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	subtle  lipgloss.Style
	running lipgloss.Style
	idle    lipgloss.Style
	offline lipgloss.Style
	graph   lipgloss.Style
	hover   lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(0, 2),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(22),
		value:   lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		subtle:  lipgloss.NewStyle().Foreground(t.Muted),
		running: lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		idle:    lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		offline: lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		graph:   lipgloss.NewStyle().Foreground(t.Primary),
		hover: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Accent).
			Foreground(t.Text).
			Padding(0, 1),
	}
}

// ProgressBar renders how far cursor is through limit.
func ProgressBar(cursor, limit float64, width int) string {
	if width < 1 {
		return ""
	}
	ratio := 0.0
	if limit > 0 {
		ratio = cursor / limit
	}
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// truncate cuts s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
