package results

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizdesk/internal/grading"
	"github.com/abhisek/quizdesk/internal/report"
	"github.com/abhisek/quizdesk/internal/router"
	"github.com/abhisek/quizdesk/internal/screen"
	"github.com/abhisek/quizdesk/internal/ui/components"
	"github.com/abhisek/quizdesk/internal/ui/layout"
)

const (
	sparkleInterval   = 300 * time.Millisecond
	sparkleFrameCount = 10
	defaultTimeout    = 15 * time.Second
)

// Submitter sends a finished quiz to the grading service.
type Submitter interface {
	Submit(ctx context.Context, sub grading.Submission) (*grading.Result, error)
}

// GradeState is the progress of the server-graded submission.
type GradeState int

const (
	GradeLocal GradeState = iota // no grading service configured
	GradeSubmitting
	GradeGraded
	GradeFailed   // transport failure, may be retried
	GradeRejected // the service refused the submission
)

// Options holds the dependencies of a results screen.
type Options struct {
	Outcome report.Outcome
	// Submitter is nil when results are only scored locally.
	Submitter Submitter
	// Timeout bounds one submission attempt including retries.
	Timeout time.Duration
	// PlayAgain builds the screen for another round; nil hides the option.
	PlayAgain func() screen.Screen
	// History builds the session history screen; nil hides the option.
	History func() screen.Screen
}

type sparkleMsg time.Time

// gradedMsg carries the outcome of a submission attempt.
type gradedMsg struct {
	Attempt int
	Result  *grading.Result
	Err     error
}

// ResultsScreen shows the score, the subtopic breakdown and the grading status.
type ResultsScreen struct {
	opts       Options
	submission grading.Submission

	state    GradeState
	attempt  int
	graded   *grading.Result
	gradeErr error
	retry    components.Button

	frame int
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a results screen for a finished session.
func New(opts Options) *ResultsScreen {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	r := &ResultsScreen{
		opts:       opts,
		submission: grading.NewSubmission(opts.Outcome),
	}
	r.retry = components.NewButton("Retry submission", "r", false, r.submit)
	return r
}

func (r *ResultsScreen) Init() tea.Cmd {
	var cmds []tea.Cmd
	if r.opts.Outcome.Celebrate {
		cmds = append(cmds, sparkle())
	}
	if r.opts.Submitter != nil {
		cmds = append(cmds, r.submit())
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (r *ResultsScreen) Title() string {
	return "Results"
}

// Status shows the student's name in the header.
func (r *ResultsScreen) Status() string {
	return r.opts.Outcome.Student.Name
}

// State returns the submission state.
func (r *ResultsScreen) State() GradeState {
	return r.state
}

func (r *ResultsScreen) KeyHints() []layout.KeyHint {
	var hints []layout.KeyHint
	if r.state == GradeFailed {
		hints = append(hints, layout.KeyHint{Key: "R", Description: "Retry"})
	}
	if r.opts.PlayAgain != nil {
		hints = append(hints, layout.KeyHint{Key: "N", Description: "New quiz"})
	}
	if r.opts.History != nil {
		hints = append(hints, layout.KeyHint{Key: "H", Description: "History"})
	}
	return append(hints, layout.KeyHint{Key: "Q", Description: "Quit"})
}

func (r *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sparkleMsg:
		r.frame++
		if r.frame >= sparkleFrameCount {
			return r, nil
		}
		return r, sparkle()

	case gradedMsg:
		return r.handleGraded(msg)

	case tea.KeyMsg:
		if r.state == GradeFailed {
			var cmd tea.Cmd
			r.retry, cmd = r.retry.Update(msg)
			if cmd != nil {
				return r, cmd
			}
		}
		switch msg.String() {
		case "n", "N":
			if r.opts.PlayAgain != nil && r.state != GradeSubmitting {
				next := r.opts.PlayAgain()
				return r, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
			}
		case "h", "H":
			if r.opts.History != nil {
				next := r.opts.History()
				return r, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
			}
		case "q", "Q", "esc":
			return r, tea.Quit
		}
	}
	return r, nil
}

// submit sends the same submission again; answers are never rebuilt, so
// a retry after a transport failure carries the learner's original choices.
func (r *ResultsScreen) submit() tea.Cmd {
	if r.opts.Submitter == nil || r.state == GradeSubmitting {
		return nil
	}
	r.state = GradeSubmitting
	r.retry.Active = false
	r.attempt++

	attempt, sub, submitter, timeout := r.attempt, r.submission, r.opts.Submitter, r.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := submitter.Submit(ctx, sub)
		return gradedMsg{Attempt: attempt, Result: res, Err: err}
	}
}

func (r *ResultsScreen) handleGraded(msg gradedMsg) (screen.Screen, tea.Cmd) {
	if msg.Attempt != r.attempt {
		return r, nil
	}
	r.gradeErr = msg.Err

	var rejected *grading.RejectedError
	switch {
	case msg.Err == nil:
		r.state = GradeGraded
		r.graded = msg.Result
	case errors.As(msg.Err, &rejected):
		r.state = GradeRejected
	default:
		r.state = GradeFailed
		r.retry.Active = true
	}
	return r, nil
}

func sparkle() tea.Cmd {
	return tea.Tick(sparkleInterval, func(t time.Time) tea.Msg {
		return sparkleMsg(t)
	})
}
