package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizdesk/internal/quiz"
)

var epoch = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func abcQuestions() []quiz.Question {
	return []quiz.Question{
		{Text: "Q1", Options: []string{"A", "B", "C"}, CorrectAnswer: "A"},
		{Text: "Q2", Options: []string{"A", "B", "C"}, CorrectAnswer: "B"},
		{Text: "Q3", Options: []string{"A", "B", "C"}, CorrectAnswer: "C"},
	}
}

// recorder collects hook invocations.
type recorder struct {
	mu        sync.Mutex
	ticks     []int
	advances  []Record
	nexts     []Snapshot
	completed []Result
	cancels   int
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		OnTick: func(_, remaining int) {
			r.mu.Lock()
			r.ticks = append(r.ticks, remaining)
			r.mu.Unlock()
		},
		OnAdvance: func(rec Record, next Snapshot) {
			r.mu.Lock()
			r.advances = append(r.advances, rec)
			r.nexts = append(r.nexts, next)
			r.mu.Unlock()
		},
		OnComplete: func(res Result) {
			r.mu.Lock()
			r.completed = append(r.completed, res)
			r.mu.Unlock()
		},
		OnCancel: func() {
			r.mu.Lock()
			r.cancels++
			r.mu.Unlock()
		},
	}
}

func newTestController(t *testing.T, opts Options) (*Controller, *ManualClock, *recorder) {
	t.Helper()
	clk := NewManualClock(epoch)
	rec := &recorder{}
	opts.Clock = clk
	opts.Hooks = rec.hooks()
	if opts.SessionID == "" {
		opts.SessionID = "test-session"
	}
	return New(opts), clk, rec
}

func startedController(t *testing.T, opts Options) (*Controller, *ManualClock, *recorder) {
	t.Helper()
	c, clk, rec := newTestController(t, opts)
	require.NoError(t, c.Start(abcQuestions()))
	return c, clk, rec
}

func TestStart_EmptyQuestionSet(t *testing.T) {
	for _, qs := range [][]quiz.Question{nil, {}} {
		c, clk, _ := newTestController(t, Options{})
		err := c.Start(qs)
		require.ErrorIs(t, err, quiz.ErrEmptySet)
		assert.ErrorIs(t, err, quiz.ErrNoQuestions)

		snap := c.Snapshot()
		assert.Equal(t, StatusNotStarted, snap.Status)
		assert.Zero(t, clk.Active(), "no timer may be started")
	}
}

func TestStart_InitialState(t *testing.T) {
	c, clk, _ := startedController(t, Options{})

	snap := c.Snapshot()
	assert.Equal(t, StatusInProgress, snap.Status)
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, "Q1", snap.Question.Text)
	assert.Equal(t, QuestionSeconds, snap.SecondsRemaining)
	assert.Len(t, snap.Answers, 3)
	for _, a := range snap.Answers {
		assert.False(t, a.Answered)
	}
	assert.Equal(t, 1, clk.Active(), "exactly one timer while in progress")

	assert.ErrorIs(t, c.Start(abcQuestions()), ErrAlreadyStarted)
}

func TestMisuseIsNoOp(t *testing.T) {
	c, _, rec := newTestController(t, Options{})

	assert.False(t, c.Select("A"))
	assert.False(t, c.Next())
	assert.False(t, c.Advance(TriggerManual))
	assert.Empty(t, rec.advances)
	assert.Equal(t, StatusNotStarted, c.Snapshot().Status)
}

func TestEndToEnd_SelectTimeoutWrong(t *testing.T) {
	c, clk, rec := startedController(t, Options{})

	// Q1: correct selection.
	require.True(t, c.Select("A"))
	require.True(t, c.Next())

	// Q2: let the countdown run out.
	for i := 0; i < QuestionSeconds; i++ {
		clk.Tick()
	}
	snap := c.Snapshot()
	require.Equal(t, 2, snap.Index, "timeout should advance to Q3")

	// Q3: wrong selection once the transition guard has cleared.
	clk.Advance(DefaultGuardGrace)
	require.True(t, c.Select("X"))
	require.True(t, c.Next())

	snap = c.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, 1, snap.Score)
	assert.Equal(t, []quiz.Answer{quiz.Chose("A"), quiz.Unanswered, quiz.Chose("X")}, snap.Answers)

	require.Len(t, rec.completed, 1)
	res := rec.completed[0]
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, snap.Answers, res.Answers)
	assert.Equal(t, "test-session", res.SessionID)

	require.Len(t, res.Records, 3)
	assert.Equal(t, TriggerManual, res.Records[0].Trigger)
	assert.Equal(t, TriggerTimeout, res.Records[1].Trigger)
	assert.Equal(t, 0, res.Records[1].SecondsRemaining)
	assert.Equal(t, time.Duration(QuestionSeconds)*time.Second, res.Records[1].Elapsed)
	assert.True(t, res.Records[0].Correct)
	assert.False(t, res.Records[2].Correct)

	clk.Advance(time.Minute)
	assert.Zero(t, clk.Active(), "no timer may outlive the session")
	assert.Len(t, rec.completed, 1, "OnComplete fires exactly once")
}

func TestAdvance_TimeoutAndClickSameTurn(t *testing.T) {
	c, _, rec := startedController(t, Options{})
	require.True(t, c.Select("A"))

	first := c.Advance(TriggerTimeout)
	second := c.Advance(TriggerManual)

	assert.True(t, first)
	assert.False(t, second, "second trigger in the same turn must be dropped")

	snap := c.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, 1, snap.Score)
	assert.Len(t, rec.advances, 1)
}

func TestAdvance_ConcurrentTriggers(t *testing.T) {
	c, _, _ := startedController(t, Options{})
	require.True(t, c.Select("A"))

	var applied atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		trigger := TriggerManual
		if i%2 == 0 {
			trigger = TriggerTimeout
		}
		go func() {
			defer wg.Done()
			if c.Advance(trigger) {
				applied.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), applied.Load())
	snap := c.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, 1, snap.Score)
}

func TestAdvance_GuardReleasesAfterGrace(t *testing.T) {
	c, clk, _ := startedController(t, Options{GuardGrace: 50 * time.Millisecond})

	require.True(t, c.Advance(TriggerManual))
	assert.False(t, c.Advance(TriggerManual))

	clk.Advance(49 * time.Millisecond)
	assert.False(t, c.Advance(TriggerManual), "guard still held inside the grace window")

	clk.Advance(time.Millisecond)
	assert.True(t, c.Advance(TriggerManual))
	assert.Equal(t, 2, c.Snapshot().Index)
}

func TestCountdownMonotonic(t *testing.T) {
	c, clk, rec := startedController(t, Options{})

	for i := 0; i < QuestionSeconds; i++ {
		clk.Tick()
	}
	require.Equal(t, 1, c.Snapshot().Index)

	want := make([]int, 0, QuestionSeconds)
	for s := QuestionSeconds - 1; s >= 0; s-- {
		want = append(want, s)
	}
	assert.Equal(t, want, rec.ticks)

	require.Len(t, rec.nexts, 1)
	assert.Equal(t, QuestionSeconds, rec.nexts[0].SecondsRemaining, "countdown resets on index change")

	clk.Tick()
	assert.Equal(t, QuestionSeconds-1, c.Snapshot().SecondsRemaining)
}

func TestManualAdvanceDropsStaleTick(t *testing.T) {
	c, clk, rec := startedController(t, Options{})

	clk.Advance(500 * time.Millisecond)
	require.True(t, c.Select("A"))
	require.True(t, c.Next())

	// The first question's timer would have fired at t=1s.
	clk.Advance(500 * time.Millisecond)
	assert.Equal(t, QuestionSeconds, c.Snapshot().SecondsRemaining)
	assert.Empty(t, rec.ticks)

	clk.Advance(500 * time.Millisecond)
	assert.Equal(t, QuestionSeconds-1, c.Snapshot().SecondsRemaining)
	assert.Equal(t, 1, clk.Active())
}

func TestNextRequiresSelection(t *testing.T) {
	c, _, _ := startedController(t, Options{})

	assert.False(t, c.NextEnabled())
	assert.False(t, c.Next())
	assert.Equal(t, 0, c.Snapshot().Index)

	require.True(t, c.Select("B"))
	assert.True(t, c.NextEnabled())
	assert.True(t, c.Next())
	assert.Equal(t, 1, c.Snapshot().Index)
	assert.False(t, c.Snapshot().Selected.Answered, "selection cleared for the next question")
}

func TestGuardGraceCappedBelowTick(t *testing.T) {
	// A grace longer than the countdown would still hold the guard when the
	// next question times out.
	c, clk, rec := startedController(t, Options{GuardGrace: 45 * time.Second})
	assert.Equal(t, MaxGuardGrace, c.grace)

	require.True(t, c.Select("A"))
	require.True(t, c.Next())
	for i := 0; i < QuestionSeconds; i++ {
		clk.Tick()
	}

	snap := c.Snapshot()
	assert.Equal(t, 2, snap.Index, "timeout should advance past the second question")
	assert.Equal(t, QuestionSeconds, snap.SecondsRemaining)
	require.Len(t, rec.advances, 2)
	assert.Equal(t, TriggerTimeout, rec.advances[1].Trigger)
}

func TestSelect_Reselection(t *testing.T) {
	c, _, _ := startedController(t, Options{})
	require.True(t, c.Select("B"))
	require.True(t, c.Select("A"))
	require.True(t, c.Next())
	assert.Equal(t, 1, c.Snapshot().Score)
}

func TestSelect_LockOnSelect(t *testing.T) {
	c, clk, _ := startedController(t, Options{LockOnSelect: true})
	require.True(t, c.Select("B"))
	assert.False(t, c.Select("A"), "choice is locked after the first selection")
	assert.True(t, c.Snapshot().Locked)

	require.True(t, c.Next())
	assert.Equal(t, 0, c.Snapshot().Score)

	clk.Advance(DefaultGuardGrace)
	assert.False(t, c.Snapshot().Locked, "lock resets for the next question")
	assert.True(t, c.Select("B"))
}

func TestCancel(t *testing.T) {
	c, clk, rec := startedController(t, Options{})
	require.True(t, c.Select("A"))
	clk.Tick()

	require.True(t, c.Cancel())
	assert.False(t, c.Cancel(), "second cancel is a no-op")

	before := c.Snapshot()
	assert.True(t, before.Cancelled)

	assert.False(t, c.Select("B"))
	assert.False(t, c.Next())
	assert.False(t, c.Advance(TriggerTimeout))
	for i := 0; i < 2*QuestionSeconds; i++ {
		clk.Tick()
	}

	after := c.Snapshot()
	assert.Equal(t, before, after, "no mutation after cancel")
	assert.Equal(t, 1, rec.cancels)
	assert.Empty(t, rec.completed)
	assert.Zero(t, clk.Active())
	assert.ErrorIs(t, c.Start(abcQuestions()), ErrCancelled)
}

func TestCancel_DuringGraceWindow(t *testing.T) {
	c, clk, rec := startedController(t, Options{})
	require.True(t, c.Advance(TriggerManual))

	require.True(t, c.Cancel())
	clk.Advance(time.Second)
	assert.False(t, c.Advance(TriggerManual))
	assert.Zero(t, clk.Active())
	assert.Equal(t, 1, rec.cancels)
}

func TestCancel_BeforeStart(t *testing.T) {
	c, _, rec := newTestController(t, Options{})
	assert.True(t, c.Cancel())
	assert.Equal(t, 1, rec.cancels)
}

func TestCancel_AfterCompletion(t *testing.T) {
	c, clk, rec := startedController(t, Options{})
	for i := 0; i < 3; i++ {
		require.True(t, c.Advance(TriggerManual))
		clk.Advance(DefaultGuardGrace)
	}
	require.Equal(t, StatusCompleted, c.Snapshot().Status)

	assert.False(t, c.Cancel())
	assert.Zero(t, rec.cancels)
	assert.Len(t, rec.completed, 1)
	assert.False(t, c.Advance(TriggerManual), "no advance after completion")
}

func TestScoreMatchesAnswers(t *testing.T) {
	patterns := [][]string{
		{"A", "B", "C"},
		{"", "", ""},
		{"C", "", "C"},
		{"A", "A", "A"},
		{"", "B", "X"},
	}
	for _, p := range patterns {
		c, clk, rec := startedController(t, Options{})
		for _, choice := range p {
			if choice == "" {
				for i := 0; i < QuestionSeconds; i++ {
					clk.Tick()
				}
			} else {
				require.True(t, c.Select(choice))
				require.True(t, c.Next())
			}
			clk.Advance(DefaultGuardGrace)
		}

		require.Len(t, rec.completed, 1, "pattern %v", p)
		res := rec.completed[0]
		require.Len(t, res.Answers, len(abcQuestions()))

		want := 0
		for i, q := range abcQuestions() {
			if q.IsCorrect(res.Answers[i]) {
				want++
			}
		}
		assert.Equal(t, want, res.Score, "pattern %v", p)
	}
}

func TestNewGeneratesSessionID(t *testing.T) {
	a := New(Options{Clock: NewManualClock(epoch)})
	b := New(Options{Clock: NewManualClock(epoch)})
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "in-progress", StatusInProgress.String())
	assert.Equal(t, "completed", StatusCompleted.String())
	assert.Equal(t, "unknown", Status(42).String())
}

func TestElapsed(t *testing.T) {
	c, clk, _ := newTestController(t, Options{})
	assert.Zero(t, c.Elapsed())

	require.NoError(t, c.Start(abcQuestions()))
	clk.Advance(12 * time.Second)
	assert.Equal(t, 12*time.Second, c.Elapsed())
}
