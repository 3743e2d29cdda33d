package app

import (
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdesk/internal/quiz"
	"github.com/abhisek/quizdesk/internal/report"
	"github.com/abhisek/quizdesk/internal/router"
	"github.com/abhisek/quizdesk/internal/screen"
	"github.com/abhisek/quizdesk/internal/screens/history"
	quizscreen "github.com/abhisek/quizdesk/internal/screens/quiz"
	"github.com/abhisek/quizdesk/internal/screens/results"
	"github.com/abhisek/quizdesk/internal/screens/welcome"
	sess "github.com/abhisek/quizdesk/internal/session"
	"github.com/abhisek/quizdesk/internal/store"
	"github.com/abhisek/quizdesk/internal/ui/layout"
)

// Options holds the dependencies the screens need.
type Options struct {
	Set     quiz.Set
	Student report.Student

	EventRepo store.EventRepo
	Emitter   *report.Emitter

	// Grader submits results for server-side grading; nil scores locally.
	Grader         results.Submitter
	GradingTimeout time.Duration

	LockOnSelect bool
	GuardGrace   time.Duration
	Clock        sess.Clock
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// flow wires the welcome -> quiz -> results loop. The student name typed
// on the welcome screen is kept for the next round.
type flow struct {
	opts Options
	name string
}

func (f *flow) welcome() screen.Screen {
	info := welcome.QuizInfo{
		Title:              f.opts.Set.Title,
		Questions:          f.opts.Set.Len(),
		SecondsPerQuestion: sess.QuestionSeconds,
	}
	w := welcome.New(info, f.name, f.quiz)
	if f.opts.EventRepo != nil {
		w.SetHistory(f.history)
	}
	return w
}

func (f *flow) history() screen.Screen {
	return history.New(f.opts.EventRepo)
}

func (f *flow) quiz(name string) screen.Screen {
	f.name = name
	student := f.opts.Student
	student.Name = name
	return quizscreen.New(quizscreen.Options{
		Set:          f.opts.Set,
		Student:      student,
		EventRepo:    f.opts.EventRepo,
		Emitter:      f.opts.Emitter,
		LockOnSelect: f.opts.LockOnSelect,
		GuardGrace:   f.opts.GuardGrace,
		Clock:        f.opts.Clock,
		Results:      f.results,
		Exit:         f.welcome,
	})
}

func (f *flow) results(o report.Outcome) screen.Screen {
	return results.New(results.Options{
		Outcome:   o,
		Submitter: f.opts.Grader,
		Timeout:   f.opts.GradingTimeout,
		PlayAgain: f.welcome,
		History:   f.historyFunc(),
	})
}

func (f *flow) historyFunc() func() screen.Screen {
	if f.opts.EventRepo == nil {
		return nil
	}
	return f.history
}

// newAppModel creates a new AppModel starting on the welcome screen.
func newAppModel(opts Options) AppModel {
	f := &flow{opts: opts, name: opts.Student.Name}
	return AppModel{
		router: router.New(f.welcome()),
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.CloseAll()
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render composes the frame around the active screen.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)

	footerHints := []layout.KeyHint{
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if kp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = kp.KeyHints()
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and waits for report delivery to
// finish once it exits.
func Run(opts Options) error {
	model := newAppModel(opts)
	p := tea.NewProgram(model)
	final, err := p.Run()
	if m, ok := final.(AppModel); ok {
		m.router.CloseAll()
	}
	if opts.Emitter != nil {
		opts.Emitter.Wait()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
