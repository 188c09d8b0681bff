package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// KidsChores theme (CLI + TUI).
// Kept intentionally small: reusable styles and a few emojis.

const (
	IconChore   = "🧹"
	IconSparkle = "✨"
	IconDone    = "✅"
	IconTrophy  = "🏆"
	IconStar    = "⭐"
	IconInfo    = "ℹ️"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconGift    = "🎁"
	IconFire    = "🔥"
	IconClock   = "⏰"
	IconCoin    = "🪙"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Dim   = lipgloss.NewStyle().Foreground(cMuted)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)

	BadgeEarned = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("BADGE EARNED")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// StateText renders a chore lifecycle state with its color.
func StateText(state string) string {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "approved":
		return Good.Render("approved")
	case "claimed":
		return H2.Render("claimed")
	case "pending":
		return Warn.Render("pending")
	case "overdue":
		return Bad.Render("overdue")
	case "completed_by_other":
		return Muted.Render("done by sibling")
	default:
		return Muted.Render(state)
	}
}

// Points renders a point amount, coloring negatives red.
func Points(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	if v < 0 {
		return Bad.Render(s)
	}
	return Gold.Render(s)
}
