package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Codequest theme (CLI + TUI).
// Kept intentionally small: reusable styles and a few emojis.

const (
	IconQuest   = "🗺️"
	IconSparkle = "✨"
	IconDone    = "✅"
	IconTrophy  = "🏆"
	IconBolt    = "⚡"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconBoss    = "👹"
	IconSword   = "⚔️"
	IconShield  = "🛡️"
	IconUnlock  = "🔓"
	IconTarget  = "🎯"
	IconFlame   = "🔥"
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

	BadgeVictory = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("VICTORY")
	BadgeDefeat  = lipgloss.NewStyle().Bold(true).Foreground(cBad).Render("DEFEAT")
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

// StateText renders a quest progress state with its usual color.
func StateText(state string) string {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "mastered":
		return Gold.Render("mastered")
	case "completed":
		return Good.Render("completed")
	case "in_progress":
		return Warn.Render("in progress")
	case "available":
		return H2.Render("available")
	case "locked":
		return Muted.Render("locked")
	default:
		return Muted.Render(state)
	}
}

// DifficultyBadge renders a practice item difficulty tag.
func DifficultyBadge(difficulty string) string {
	switch difficulty {
	case "legendary":
		return Gold.Render("[legendary]")
	case "hard":
		return Bad.Render("[hard]")
	case "medium":
		return Warn.Render("[medium]")
	default:
		return Good.Render("[easy]")
	}
}
