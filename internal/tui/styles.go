package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	pinStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	faintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	activeTab   = lipgloss.NewStyle().Bold(true).Underline(true)
	inactiveTab = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderConfidenceBar draws a fixed-width bar labeled with the rounded
// integer percentage, e.g. "[███████---] 73%".
func renderConfidenceBar(score float64, width int) string {
	if width < 4 {
		width = 4
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	pct := int(math.Round(score))
	filled := int(math.Round(score / 100 * float64(width)))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("-", width-filled)
	return fmt.Sprintf("[%s] %d%%", bar, pct)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}

func statusLabel(s string) string {
	switch s {
	case "ready":
		return okStyle.Render("ready")
	case "failed":
		return errStyle.Render("failed")
	case "analyzing":
		return "analyzing…"
	default:
		return faintStyle.Render(s)
	}
}
