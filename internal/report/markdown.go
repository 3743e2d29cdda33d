package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/abhisek/quizdesk/internal/analysis"
	"github.com/abhisek/quizdesk/internal/quiz"
)

const markdownTemplate = `# {{ title . }}

- Student: {{ or .Student.Name "anonymous" }}
- Session: {{ .SessionID }}
{{- if not .StartedAt.IsZero }}
- Taken: {{ .StartedAt.Format "2006-01-02 15:04" }}
{{- end }}
- Time: {{ duration .TimeTaken }}
- Score: {{ .Score }}/{{ .TotalQuestions }} ({{ percent .Ratio }})
{{ if .Celebrate }}
**Great work!**
{{ end }}
## Subtopics

| Subtopic | Correct | Total | Score |
|---|---|---|---|
{{- range .Performance.Subtopics }}
| {{ .Name }} | {{ .Correct }} | {{ .Total }} | {{ printf "%.1f" .Percentage }}% |
{{- end }}

Average: {{ printf "%.1f" .Performance.Average }}%

## Strengths
{{ range .Performance.Strengths }}
- {{ .Name }} ({{ printf "%.1f" .Percentage }}%)
{{- else }}
- none yet
{{- end }}

## Needs work
{{ range .Performance.Weaknesses }}
- {{ .Name }} ({{ printf "%.1f" .Percentage }}%)
{{- else }}
- nothing below 50%
{{- end }}

## Questions
{{ range $i, $q := .Questions }}
{{ inc $i }}. {{ $q.Text }}
   - Your answer: {{ answerAt $.Answers $i }} {{ if $q.IsCorrect (answerAt $.Answers $i) }}(correct){{ else }}(correct answer: {{ $q.CorrectAnswer }}){{ end }}
{{- if $q.Explanation }}
   - {{ $q.Explanation }}
{{- end }}
{{- end }}
`

var markdown = template.Must(template.New("report").Funcs(template.FuncMap{
	"title": func(o Outcome) string {
		if o.QuizTitle != "" {
			return o.QuizTitle
		}
		if o.QuizID != "" {
			return o.QuizID
		}
		return "Quiz report"
	},
	"duration": func(d time.Duration) string { return d.Round(time.Second).String() },
	"percent":  func(r float64) string { return fmt.Sprintf("%.0f%%", r*100) },
	"inc":      func(i int) int { return i + 1 },
	"answerAt": func(answers []quiz.Answer, i int) quiz.Answer {
		if i < len(answers) {
			return answers[i]
		}
		return quiz.Unanswered
	},
}).Parse(markdownTemplate))

// RenderMarkdown writes o as a markdown report.
func RenderMarkdown(w io.Writer, o Outcome) error {
	if o.Performance.SubtopicScores == nil {
		o.Performance = analysis.Analyze(o.Questions, o.Answers, analysis.FallbackSubtopic)
	}
	return markdown.Execute(w, o)
}

// MarkdownExporter writes quiz-<session>.md into Dir.
type MarkdownExporter struct {
	Dir string
}

func (MarkdownExporter) String() string { return "markdown" }

// Path returns the file the exporter writes for sessionID.
func (m MarkdownExporter) Path(sessionID string) string {
	return filepath.Join(m.Dir, "quiz-"+sanitize(sessionID)+".md")
}

func (m MarkdownExporter) Deliver(ctx context.Context, o Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	path := m.Path(o.SessionID)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := RenderMarkdown(f, o); err != nil {
		f.Close()
		return fmt.Errorf("render report: %w", err)
	}
	return f.Close()
}

func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
}
