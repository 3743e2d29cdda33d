package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdesk/internal/ui/theme"
)

// UrgentSeconds is the remaining time at which the countdown turns urgent.
const UrgentSeconds = 5

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
	// Fill overrides the filled segment color; theme.Secondary when nil.
	Fill color.Color
	// Suffix replaces the percentage text when set.
	Suffix string
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// NewCountdown builds the per-question timer bar.
func NewCountdown(remaining, total, width int) ProgressBar {
	pct := 0.0
	if total > 0 {
		pct = float64(remaining) / float64(total)
	}
	bar := ProgressBar{
		Label:   "Time",
		Percent: pct,
		Width:   width,
		Suffix:  fmt.Sprintf("%2ds", remaining),
		Fill:    theme.Secondary,
	}
	if remaining <= UrgentSeconds {
		bar.Fill = theme.Error
	}
	return bar
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	suffix := p.suffix()
	suffixWidth := 0
	if suffix != "" {
		suffixWidth = lipgloss.Width(suffix) + 2
	}

	barWidth := p.Width - labelWidth - suffixWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	fill := p.Fill
	if fill == nil {
		fill = theme.Secondary
	}
	filledStr := lipgloss.NewStyle().
		Background(fill).
		Render(strings.Repeat(" ", filled))

	emptyStr := lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", empty))

	result += filledStr + emptyStr

	if suffix != "" {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render("  " + suffix)
	}

	return result
}

func (p ProgressBar) suffix() string {
	if p.Suffix != "" {
		return p.Suffix
	}
	if p.ShowPercent {
		return fmt.Sprintf("%d%%", int(p.Percent*100))
	}
	return ""
}
