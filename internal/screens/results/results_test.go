package results

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizdesk/internal/analysis"
	"github.com/abhisek/quizdesk/internal/grading"
	"github.com/abhisek/quizdesk/internal/quiz"
	"github.com/abhisek/quizdesk/internal/report"
	"github.com/abhisek/quizdesk/internal/router"
	"github.com/abhisek/quizdesk/internal/screen"
)

// fakeSubmitter returns queued responses in order.
type fakeSubmitter struct {
	responses []response
	got       []grading.Submission
}

type response struct {
	res *grading.Result
	err error
}

func (f *fakeSubmitter) Submit(_ context.Context, sub grading.Submission) (*grading.Result, error) {
	f.got = append(f.got, sub)
	r := f.responses[0]
	f.responses = f.responses[1:]
	return r.res, r.err
}

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "welcome" }
func (s *stubScreen) Title() string                           { return "" }

func testOutcome(score int) report.Outcome {
	questions := []quiz.Question{
		{Text: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4", Subtopic: "Addition"},
		{Text: "3+3?", Options: []string{"6", "7"}, CorrectAnswer: "6", Subtopic: "Addition"},
		{Text: "5-1?", Options: []string{"4", "3"}, CorrectAnswer: "4", Subtopic: "Subtraction"},
		{Text: "9-3?", Options: []string{"5", "6"}, CorrectAnswer: "6", Subtopic: "Subtraction"},
	}
	answers := make([]quiz.Answer, len(questions))
	for i := 0; i < score; i++ {
		answers[i] = quiz.Chose(questions[i].CorrectAnswer)
	}
	return report.Outcome{
		SessionID:      "s-1",
		QuizID:         "arith",
		Student:        report.Student{ID: "st-9", Name: "Ada"},
		Score:          score,
		TotalQuestions: len(questions),
		Questions:      questions,
		Answers:        answers,
		Performance:    analysis.Analyze(questions, answers, ""),
		Celebrate:      report.Celebrates(score, len(questions)),
		TimeTaken:      95 * time.Second,
	}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// run executes the submission command and feeds its result back.
func run(t *testing.T, r *ResultsScreen, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a submission command")
	}
	r.Update(cmd())
}

func TestResultsScreen_LocalOnly(t *testing.T) {
	r := New(Options{Outcome: testOutcome(1)})
	if cmd := r.Init(); cmd != nil {
		t.Error("expected no commands without celebration or grading")
	}
	if r.State() != GradeLocal {
		t.Errorf("State = %v, want GradeLocal", r.State())
	}

	view := r.View(100, 40)
	for _, want := range []string{"Quiz complete", "Score: 1 / 4", "Addition", "Subtraction", "Time: 1:35"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "Great job") {
		t.Error("1 of 4 should not celebrate")
	}
}

func TestResultsScreen_StrengthsAndWeaknesses(t *testing.T) {
	// Addition 2/2 is a strength, Subtraction 0/2 a weakness.
	r := New(Options{Outcome: testOutcome(2)})
	view := r.View(100, 40)
	strengths := lineWith(view, "Strengths")
	if !strings.Contains(strengths, "Addition") || strings.Contains(strengths, "Subtraction") {
		t.Errorf("expected only Addition listed as a strength, got %q", strengths)
	}
	weaknesses := lineWith(view, "Needs work")
	if !strings.Contains(weaknesses, "Subtraction") || strings.Contains(weaknesses, "Addition") {
		t.Errorf("expected only Subtraction listed as a weakness, got %q", weaknesses)
	}
	if !strings.Contains(view, "Average 50.0%") {
		t.Errorf("expected average of subtopic percentages")
	}
}

func TestResultsScreen_Celebration(t *testing.T) {
	r := New(Options{Outcome: testOutcome(3)})
	if r.Init() == nil {
		t.Fatal("expected sparkle animation to start")
	}
	if !strings.Contains(r.View(100, 40), "Great job, Ada!") {
		t.Error("expected celebration banner")
	}

	var cmd tea.Cmd
	for i := 0; i < sparkleFrameCount; i++ {
		_, cmd = r.Update(sparkleMsg(time.Now()))
	}
	if cmd != nil {
		t.Error("animation should stop after its last frame")
	}
}

func TestResultsScreen_Graded(t *testing.T) {
	sub := &fakeSubmitter{responses: []response{
		{res: &grading.Result{Success: true, Score: 3, TotalQuestions: 4}},
	}}
	r := New(Options{Outcome: testOutcome(3), Submitter: sub})

	cmd := r.submit()
	if r.State() != GradeSubmitting {
		t.Fatalf("State = %v, want GradeSubmitting", r.State())
	}
	run(t, r, cmd)

	if r.State() != GradeGraded {
		t.Fatalf("State = %v, want GradeGraded", r.State())
	}
	if !strings.Contains(r.View(100, 40), "Official score: 3 / 4") {
		t.Error("expected official score in view")
	}
	if got := sub.got[0]; got.StudentID != "st-9" || got.TimeTaken != 95 || len(got.Answers) != 4 {
		t.Errorf("unexpected submission %+v", got)
	}
	if sub.got[0].Answers[3].SelectedAnswer != nil {
		t.Error("unanswered question should be sent as null")
	}
}

func TestResultsScreen_TransportFailureRetriesSameAnswers(t *testing.T) {
	sub := &fakeSubmitter{responses: []response{
		{err: &grading.TransportError{StatusCode: 503, Err: errors.New("unavailable")}},
		{res: &grading.Result{Success: true, Score: 2, TotalQuestions: 4}},
	}}
	r := New(Options{Outcome: testOutcome(2), Submitter: sub})

	run(t, r, r.submit())
	if r.State() != GradeFailed {
		t.Fatalf("State = %v, want GradeFailed", r.State())
	}
	view := r.View(100, 40)
	if !strings.Contains(view, "Could not reach") || !strings.Contains(view, "Retry submission") {
		t.Errorf("expected failure message and retry button")
	}
	if r.KeyHints()[0].Key != "R" {
		t.Errorf("expected retry hint first, got %+v", r.KeyHints())
	}

	_, cmd := r.Update(keyPress('r'))
	run(t, r, cmd)

	if r.State() != GradeGraded {
		t.Fatalf("State = %v after retry, want GradeGraded", r.State())
	}
	if len(sub.got) != 2 {
		t.Fatalf("expected 2 submissions, got %d", len(sub.got))
	}
	for i := range sub.got[0].Answers {
		a, b := sub.got[0].Answers[i].SelectedAnswer, sub.got[1].Answers[i].SelectedAnswer
		if (a == nil) != (b == nil) || (a != nil && *a != *b) {
			t.Errorf("answer %d changed between attempts", i)
		}
	}
}

func TestResultsScreen_Rejected(t *testing.T) {
	sub := &fakeSubmitter{responses: []response{
		{err: &grading.RejectedError{Message: "quiz closed"}},
	}}
	r := New(Options{Outcome: testOutcome(2), Submitter: sub})

	run(t, r, r.submit())
	if r.State() != GradeRejected {
		t.Fatalf("State = %v, want GradeRejected", r.State())
	}
	if !strings.Contains(r.View(100, 40), "quiz closed") {
		t.Error("expected rejection message")
	}
	if _, cmd := r.Update(keyPress('r')); cmd != nil {
		t.Error("rejected submissions are not retried")
	}
}

func TestResultsScreen_StaleAttemptIgnored(t *testing.T) {
	r := New(Options{Outcome: testOutcome(2), Submitter: &fakeSubmitter{}})
	r.attempt = 2
	r.state = GradeSubmitting
	r.Update(gradedMsg{Attempt: 1, Err: errors.New("late")})
	if r.State() != GradeSubmitting {
		t.Errorf("stale result changed state to %v", r.State())
	}
}

func TestResultsScreen_PlayAgain(t *testing.T) {
	r := New(Options{
		Outcome:   testOutcome(2),
		PlayAgain: func() screen.Screen { return &stubScreen{} },
	})
	_, cmd := r.Update(keyPress('n'))
	if cmd == nil {
		t.Fatal("expected play-again command")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Errorf("expected ReplaceScreenMsg, got %T", cmd())
	}
}

func TestResultsScreen_Quit(t *testing.T) {
	r := New(Options{Outcome: testOutcome(2)})
	_, cmd := r.Update(keyPress('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg, got %T", cmd())
	}
}

func lineWith(view, substr string) string {
	for _, line := range strings.Split(view, "\n") {
		if strings.Contains(line, substr) {
			return line
		}
	}
	return ""
}

func TestResultsScreen_History(t *testing.T) {
	r := New(Options{Outcome: testOutcome(2)})
	if _, cmd := r.Update(keyPress('h')); cmd != nil {
		t.Error("history key should do nothing without a history screen")
	}

	r = New(Options{
		Outcome: testOutcome(2),
		History: func() screen.Screen { return &stubScreen{} },
	})
	_, cmd := r.Update(keyPress('h'))
	if cmd == nil {
		t.Fatal("expected history command")
	}
	if _, ok := cmd().(router.PushScreenMsg); !ok {
		t.Errorf("expected PushScreenMsg, got %T", cmd())
	}
}
