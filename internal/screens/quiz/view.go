package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdesk/internal/analysis"
	sess "github.com/abhisek/quizdesk/internal/session"
	"github.com/abhisek/quizdesk/internal/ui/components"
	"github.com/abhisek/quizdesk/internal/ui/layout"
	"github.com/abhisek/quizdesk/internal/ui/theme"
)

const maxContentWidth = 72

func (s *QuizScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, s.errMsg)
	}
	if s.showingQuitConfirm {
		return renderQuitConfirm(width, height)
	}
	return s.renderQuestion(width)
}

func (s *QuizScreen) renderQuestion(width int) string {
	snap := s.snap
	inner := min(width-4, maxContentWidth)

	var b strings.Builder

	subtopic := strings.TrimSpace(snap.Question.Subtopic)
	if subtopic == "" {
		subtopic = analysis.FallbackSubtopic
	}
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + subtopic)
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%d/%d  ", snap.Index+1, snap.Total))

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight); pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(layout.Divider(width, width))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render(lipgloss.NewStyle().Width(inner).Render(snap.Question.Text)))
	b.WriteString("\n\n")

	b.WriteString(layout.Centered(width, s.list.View()))
	b.WriteString("\n")

	countdown := components.NewCountdown(snap.SecondsRemaining, sess.QuestionSeconds, inner)
	b.WriteString(layout.Centered(width, countdown.View()))
	b.WriteString("\n\n")

	next := components.NewButton("Next", "", snap.NextEnabled && !s.finished, nil)
	b.WriteString(layout.Centered(width, next.View()))
	b.WriteString("\n\n")

	b.WriteString(layout.Centered(width, theme.Hint.Render(s.hint())))

	return b.String()
}

func (s *QuizScreen) hint() string {
	switch {
	case s.finished:
		return "Finishing..."
	case s.snap.Expired:
		return "Time's up! Press Enter to continue"
	case s.snap.Locked:
		return "Answer locked. Press Enter for the next question"
	case s.snap.Selected.Answered:
		return "Press Enter for the next question"
	default:
		return fmt.Sprintf("Choose (1-%d) or use arrows + Space", min(len(s.list.Options), components.MaxOptions))
	}
}

func renderQuitConfirm(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Quit this quiz?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("The timer keeps running. Unanswered questions score zero."))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render("[Y] Yes, quit"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[N] No, keep going"))

	return lipgloss.PlaceVertical(height, lipgloss.Top, b.String())
}

func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}
