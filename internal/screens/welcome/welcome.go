package welcome

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizdesk/internal/router"
	"github.com/abhisek/quizdesk/internal/screen"
	"github.com/abhisek/quizdesk/internal/ui/components"
	"github.com/abhisek/quizdesk/internal/ui/layout"
	"github.com/abhisek/quizdesk/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	revealAfter  = 300 * time.Millisecond
	maxNameLen   = 40
)

type tickMsg time.Time

// QuizInfo describes the quiz about to be played.
type QuizInfo struct {
	Title              string
	Questions          int
	SecondsPerQuestion int
}

// StartFunc builds the quiz screen for the named student.
type StartFunc func(name string) screen.Screen

// WelcomeScreen introduces the quiz and asks for the student's name.
type WelcomeScreen struct {
	info         QuizInfo
	start        StartFunc
	history      func() screen.Screen
	input        components.TextInput
	elapsed      time.Duration
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen. name pre-fills the input.
func New(info QuizInfo, name string, start StartFunc) *WelcomeScreen {
	input := components.NewTextInput("your name", maxNameLen)
	if name != "" {
		input.SetValue(name)
	}
	return &WelcomeScreen{
		info:  info,
		start: start,
		input: input,
	}
}

// SetHistory enables the history shortcut.
func (w *WelcomeScreen) SetHistory(open func() screen.Screen) {
	w.history = open
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Batch(w.input.Init(), tick())
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Start quiz"}}
	if w.history != nil {
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "History"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Quit"})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if w.elapsed >= revealAfter {
			return w, nil
		}
		w.elapsed += tickInterval
		return w, tick()

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			return w, w.submit()
		case "esc":
			return w, tea.Quit
		case "tab":
			if w.history != nil {
				next := w.history()
				return w, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			}
			return w, nil
		}
	}

	var cmd tea.Cmd
	w.input, cmd = w.input.Update(msg)
	return w, cmd
}

func (w *WelcomeScreen) submit() tea.Cmd {
	if w.transitioned {
		return nil
	}
	name := w.input.Value()
	if name == "" {
		w.input.Submit(false)
		return nil
	}
	w.input.Submit(true)
	w.transitioned = true
	next := w.start(name)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, RenderBanner(width))

	if w.elapsed >= revealAfter {
		title := w.info.Title
		if title == "" {
			title = "Quiz"
		}
		sections = append(sections, "",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(title),
			theme.Subtitle.Render(fmt.Sprintf("%d questions · %d seconds each",
				w.info.Questions, w.info.SecondsPerQuestion)),
			"",
			theme.Body.Render("What's your name?"),
			w.input.View(),
		)
		if w.input.Invalid() {
			sections = append(sections, lipgloss.NewStyle().Foreground(theme.Error).Render("Please enter your name"))
		}
		sections = append(sections, "", theme.Hint.Render("press enter to begin"))
	}

	content := strings.Join(sections, "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
