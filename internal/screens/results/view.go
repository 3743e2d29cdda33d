package results

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdesk/internal/analysis"
	"github.com/abhisek/quizdesk/internal/ui/components"
	"github.com/abhisek/quizdesk/internal/ui/layout"
	"github.com/abhisek/quizdesk/internal/ui/theme"
)

var sparkleFrames = []string{"★", "✦", "✧"}

const (
	barWidth   = 48
	nameWidth  = 16
	maxReviews = 12
)

func (r *ResultsScreen) View(width, height int) string {
	o := r.opts.Outcome
	center := func(s string) string { return layout.Centered(width, s) }

	var b strings.Builder

	if o.Celebrate {
		b.WriteString(center(r.renderCelebration()))
	} else {
		b.WriteString(center(theme.Title.Render("Quiz complete")))
	}
	b.WriteString("\n\n")

	pct := 0
	if o.TotalQuestions > 0 {
		pct = o.Score * 100 / o.TotalQuestions
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).
		Render(fmt.Sprintf("Score: %d / %d  (%d%%)", o.Score, o.TotalQuestions, pct))))
	b.WriteString("\n")
	b.WriteString(center(theme.Subtitle.Render(fmt.Sprintf("Time: %s", formatDuration(o.TimeTaken.Seconds())))))
	b.WriteString("\n\n")

	b.WriteString(center(theme.Subtitle.Render("By subtopic")))
	b.WriteString("\n")
	b.WriteString(layout.Divider(width, barWidth+nameWidth))
	b.WriteString("\n")
	for _, s := range o.Performance.Subtopics {
		b.WriteString(center(renderSubtopic(s)))
		b.WriteString("\n")
	}
	b.WriteString(center(theme.Subtitle.Render(fmt.Sprintf("Average %.1f%%", o.Performance.Average))))
	b.WriteString("\n\n")

	b.WriteString(center(renderList("Strengths", o.Performance.Strengths, theme.Success)))
	b.WriteString("\n")
	b.WriteString(center(renderList("Needs work", o.Performance.Weaknesses, theme.Error)))
	b.WriteString("\n\n")

	if height >= 30 {
		b.WriteString(center(r.renderReview()))
		b.WriteString("\n")
	}

	if status := r.renderGrading(); status != "" {
		b.WriteString(center(status))
		b.WriteString("\n")
		if r.state == GradeFailed {
			b.WriteString("\n")
			b.WriteString(center(r.retry.View()))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (r *ResultsScreen) renderCelebration() string {
	name := r.opts.Outcome.Student.Name
	msg := "Great job!"
	if name != "" {
		msg = fmt.Sprintf("Great job, %s!", name)
	}
	s := sparkleFrames[r.frame%len(sparkleFrames)]
	left := lipgloss.NewStyle().Foreground(theme.Accent).Render(s + " " + s)
	right := lipgloss.NewStyle().Foreground(theme.Secondary).Render(s + " " + s)
	return left + "  " + theme.Title.Foreground(theme.Accent).Render(msg) + "  " + right
}

func renderSubtopic(s analysis.SubtopicScore) string {
	name := s.Name
	if lipgloss.Width(name) > nameWidth {
		name = string([]rune(name)[:nameWidth-1]) + "…"
	}
	bar := components.ProgressBar{
		Label:   fmt.Sprintf("%-*s", nameWidth, name),
		Percent: s.Percentage / 100,
		Width:   barWidth + nameWidth,
		Fill:    categoryColor(s.Category()),
		Suffix:  fmt.Sprintf("%d/%d %5.1f%%", s.Correct, s.Total, s.Percentage),
	}
	return bar.View()
}

func renderList(label string, scores []analysis.SubtopicScore, c color.Color) string {
	names := make([]string, 0, len(scores))
	for _, s := range scores {
		names = append(names, s.Name)
	}
	value := "none"
	if len(names) > 0 {
		value = strings.Join(names, ", ")
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(label+": ") +
		lipgloss.NewStyle().Foreground(theme.Text).Render(value)
}

func (r *ResultsScreen) renderReview() string {
	o := r.opts.Outcome
	var lines []string
	for i, q := range o.Questions {
		if i >= maxReviews {
			lines = append(lines, theme.Hint.Render(fmt.Sprintf("… %d more", len(o.Questions)-maxReviews)))
			break
		}
		ans := "-"
		correct := false
		if i < len(o.Answers) {
			ans = o.Answers[i].String()
			correct = q.IsCorrect(o.Answers[i])
		}
		mark := theme.Incorrect.Render("✗")
		if correct {
			mark = theme.Correct.Render("✓")
		}
		text := q.Text
		if lipgloss.Width(text) > 40 {
			text = string([]rune(text)[:39]) + "…"
		}
		lines = append(lines, fmt.Sprintf("%s %d. %-40s %s", mark, i+1, text, ans))
	}
	return strings.Join(lines, "\n")
}

func (r *ResultsScreen) renderGrading() string {
	switch r.state {
	case GradeSubmitting:
		return theme.Hint.Render("Submitting to the grading service...")
	case GradeGraded:
		if r.graded == nil {
			return ""
		}
		return lipgloss.NewStyle().Foreground(theme.Success).Bold(true).
			Render(fmt.Sprintf("Official score: %d / %d", r.graded.Score, r.graded.TotalQuestions))
	case GradeFailed:
		return lipgloss.NewStyle().Foreground(theme.Warning).
			Render(fmt.Sprintf("Could not reach the grading service: %v", r.gradeErr))
	case GradeRejected:
		return lipgloss.NewStyle().Foreground(theme.Error).
			Render(fmt.Sprintf("Grading service rejected the submission: %v", r.gradeErr))
	}
	return ""
}

// categoryColor returns the theme color for a subtopic classification.
func categoryColor(c analysis.Category) color.Color {
	switch c {
	case analysis.CategoryStrength:
		return theme.Success
	case analysis.CategoryWeakness:
		return theme.Error
	default:
		return theme.Accent
	}
}

func formatDuration(secs float64) string {
	total := int(secs)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
