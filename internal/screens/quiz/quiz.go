package quiz

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	qset "github.com/abhisek/quizdesk/internal/quiz"
	"github.com/abhisek/quizdesk/internal/report"
	"github.com/abhisek/quizdesk/internal/router"
	"github.com/abhisek/quizdesk/internal/screen"
	sess "github.com/abhisek/quizdesk/internal/session"
	"github.com/abhisek/quizdesk/internal/store"
	"github.com/abhisek/quizdesk/internal/ui/components"
	"github.com/abhisek/quizdesk/internal/ui/layout"
)

const (
	eventBuffer    = 16
	persistTimeout = 5 * time.Second
)

// Options holds the dependencies of a quiz screen.
type Options struct {
	Set     qset.Set
	Student report.Student

	// EventRepo records start and cancel events; nil disables persistence.
	EventRepo store.EventRepo
	// Emitter receives the outcome on completion; may be nil.
	Emitter *report.Emitter

	LockOnSelect bool
	GuardGrace   time.Duration
	// Clock drives the countdown; SystemClock when nil.
	Clock sess.Clock

	// Results builds the screen shown after completion.
	Results func(report.Outcome) screen.Screen
	// Exit builds the screen shown after the learner quits; the program
	// quits when nil.
	Exit func() screen.Screen

	// Warnings receives failed event writes; stderr when nil.
	Warnings io.Writer
}

// QuizScreen runs one timed session. The controller owns all quiz state;
// the screen keeps a snapshot for rendering and the option cursor.
type QuizScreen struct {
	opts  Options
	ctrl  *sess.Controller
	snap  sess.Snapshot
	list  components.OptionList
	shown int // index the option list was built for

	events    chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once

	showingQuitConfirm bool
	finished           bool
	errMsg             string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.Closer = (*QuizScreen)(nil)

// New creates a quiz screen. The session starts in Init.
func New(opts Options) *QuizScreen {
	s := &QuizScreen{
		opts:   opts,
		events: make(chan tea.Msg, eventBuffer),
		done:   make(chan struct{}),
		shown:  -1,
	}
	s.ctrl = sess.New(sess.Options{
		Clock:        opts.Clock,
		GuardGrace:   opts.GuardGrace,
		LockOnSelect: opts.LockOnSelect,
		Hooks: sess.Hooks{
			OnTick: func(index, remaining int) {
				s.offer(countdownMsg{Index: index, Remaining: remaining})
			},
			OnAdvance: func(rec sess.Record, next sess.Snapshot) {
				s.post(advanceMsg{Record: rec, Next: next})
			},
			OnComplete: func(res sess.Result) {
				s.post(completeMsg{Result: res})
			},
		},
	})
	return s
}

// SessionID returns the id of the running session.
func (s *QuizScreen) SessionID() string {
	return s.ctrl.ID()
}

func (s *QuizScreen) Init() tea.Cmd {
	if err := s.ctrl.Start(s.opts.Set.Questions); err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.refresh()
	return tea.Batch(s.waitForEvent(), s.recordStart())
}

func (s *QuizScreen) Title() string {
	if s.snap.Total == 0 {
		return "Quiz"
	}
	return fmt.Sprintf("Question %d of %d", s.snap.Index+1, s.snap.Total)
}

// Status shows the quiz title in the header.
func (s *QuizScreen) Status() string {
	return s.opts.Set.Title
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	}
	if s.showingQuitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Quit quiz"},
			{Key: "N", Description: "Keep going"},
		}
	}
	return []layout.KeyHint{
		{Key: "1-9", Description: "Choose"},
		{Key: "↑↓ Space", Description: "Move, choose"},
		{Key: "Enter", Description: "Next"},
		{Key: "Esc", Description: "Quit"},
	}
}

// Close stops the session if it is still running and drops pending events.
func (s *QuizScreen) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		started := s.ctrl.Snapshot().Status != sess.StatusNotStarted
		if s.ctrl.Cancel() && started {
			s.recordCancel()
		}
	})
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case countdownMsg:
		s.refresh()
		return s, s.waitForEvent()

	case advanceMsg:
		s.refresh()
		return s, s.waitForEvent()

	case completeMsg:
		return s.handleComplete(msg)

	case persistMsg:
		// Persistence failures never interrupt the quiz.
		if msg.Err != nil {
			s.warnf("record session start: %v", msg.Err)
		}
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, s.exit()
	}
	if s.finished {
		return s, nil
	}

	if s.showingQuitConfirm {
		switch key {
		case "y", "Y":
			s.showingQuitConfirm = false
			return s, s.quit()
		case "n", "N", "esc":
			s.showingQuitConfirm = false
		}
		return s, nil
	}

	switch key {
	case "esc":
		s.showingQuitConfirm = true
		return s, nil
	case "enter":
		s.next()
		return s, nil
	case "space", " ":
		if opt, ok := s.list.AtCursor(); ok {
			s.choose(opt)
		}
		return s, nil
	}

	if i, ok := s.list.ForDigit(key); ok {
		s.list.Cursor = i
		s.choose(s.list.Options[i])
		return s, nil
	}

	s.list, _ = s.list.Update(msg)
	return s, nil
}

// next selects the option under the cursor when nothing is chosen yet and
// the countdown is still running, then asks the controller to advance.
func (s *QuizScreen) next() {
	snap := s.ctrl.Snapshot()
	if !snap.Selected.Answered && !snap.Expired {
		if opt, ok := s.list.AtCursor(); ok {
			s.ctrl.Select(opt)
		}
	}
	s.ctrl.Next()
	s.refresh()
}

func (s *QuizScreen) choose(option string) {
	s.ctrl.Select(option)
	s.refresh()
}

func (s *QuizScreen) quit() tea.Cmd {
	if !s.ctrl.Cancel() {
		return nil
	}
	s.finished = true
	s.refresh()
	s.recordCancel()
	return s.exit()
}

func (s *QuizScreen) exit() tea.Cmd {
	if s.opts.Exit == nil {
		return tea.Quit
	}
	next := s.opts.Exit()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (s *QuizScreen) handleComplete(msg completeMsg) (screen.Screen, tea.Cmd) {
	if s.finished {
		return s, nil
	}
	s.finished = true
	s.refresh()

	outcome := report.NewOutcome(s.opts.Set, msg.Result, s.opts.Student)
	if s.opts.Emitter != nil {
		s.opts.Emitter.Emit(outcome)
	}
	if s.opts.Results == nil {
		return s, tea.Quit
	}
	next := s.opts.Results(outcome)
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

// refresh copies controller state and rebuilds the option list when the
// question changed.
func (s *QuizScreen) refresh() {
	s.snap = s.ctrl.Snapshot()
	if s.snap.Index != s.shown {
		s.list = components.NewOptionList(s.snap.Question.Options)
		s.shown = s.snap.Index
	}
	s.list.Chosen = s.snap.Selected.Option
	s.list.Locked = s.snap.Locked
	s.list.Disabled = s.finished || s.snap.Status != sess.StatusInProgress
}

// post forwards a controller hook to the UI. Hooks may run on the clock's
// goroutine, so the send gives up once the screen is closed.
func (s *QuizScreen) post(msg tea.Msg) {
	select {
	case s.events <- msg:
	case <-s.done:
	}
}

// offer is post for messages that only trigger a redraw; they are dropped
// when the UI is behind.
func (s *QuizScreen) offer(msg tea.Msg) {
	select {
	case s.events <- msg:
	default:
	}
}

func (s *QuizScreen) waitForEvent() tea.Cmd {
	events, done := s.events, s.done
	return func() tea.Msg {
		select {
		case msg := <-events:
			return msg
		case <-done:
			return nil
		}
	}
}

func (s *QuizScreen) recordStart() tea.Cmd {
	repo := s.opts.EventRepo
	if repo == nil {
		return nil
	}
	data := s.sessionEvent(store.ActionStart)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		return persistMsg{Err: repo.AppendSessionEvent(ctx, data)}
	}
}

// recordCancel writes the cancel event synchronously; the screen is about
// to go away and the program may be exiting.
func (s *QuizScreen) recordCancel() {
	repo := s.opts.EventRepo
	if repo == nil {
		return
	}
	data := s.sessionEvent(store.ActionCancel)
	snap := s.ctrl.Snapshot()
	data.Score = snap.Score
	data.DurationSecs = int(s.ctrl.Elapsed().Seconds())

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := repo.AppendSessionEvent(ctx, data); err != nil {
		s.warnf("record session cancel: %v", err)
	}
}

func (s *QuizScreen) warnf(format string, args ...any) {
	w := s.opts.Warnings
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "warning: "+format+"\n", args...)
}

func (s *QuizScreen) sessionEvent(action string) store.SessionEventData {
	return store.SessionEventData{
		SessionID:      s.ctrl.ID(),
		Action:         action,
		QuizID:         s.opts.Set.ID,
		QuizTitle:      s.opts.Set.Title,
		Student:        s.opts.Student.Name,
		TotalQuestions: s.opts.Set.Len(),
	}
}
