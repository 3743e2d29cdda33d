package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizdesk/internal/quiz"
)

var (
	// ErrAlreadyStarted is returned by Start on a controller that has left NotStarted.
	ErrAlreadyStarted = errors.New("session already started")
	// ErrCancelled is returned by Start after Cancel.
	ErrCancelled = errors.New("session cancelled")
)

// Controller is the timed quiz state machine. It presents one question at a
// time under a per-question countdown and advances exactly once per question,
// whether the advance comes from the timer or from the learner. All methods
// are safe for concurrent use.
type Controller struct {
	mu           sync.Mutex
	clock        Clock
	grace        time.Duration
	lockOnSelect bool
	hooks        Hooks
	guard        advanceGuard

	id        string
	questions []quiz.Question
	status    Status
	cancelled bool

	index     int
	selected  quiz.Answer
	locked    bool
	answers   []quiz.Answer
	records   []Record
	score     int
	remaining int
	expired   bool

	stopTimer func()
	timerGen  uint64

	startedAt         time.Time
	questionStartedAt time.Time
}

// New creates a controller in the NotStarted state.
func New(opts Options) *Controller {
	c := &Controller{
		clock:        opts.Clock,
		grace:        opts.GuardGrace,
		lockOnSelect: opts.LockOnSelect,
		hooks:        opts.Hooks,
		id:           opts.SessionID,
	}
	if c.clock == nil {
		c.clock = SystemClock{}
	}
	switch {
	case c.grace <= 0:
		c.grace = DefaultGuardGrace
	case c.grace > MaxGuardGrace:
		c.grace = MaxGuardGrace
	}
	if c.id == "" {
		c.id = uuid.New().String()
	}
	return c
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.id
}

// Start begins the session on questions and starts the first countdown.
// An empty or nil question set returns quiz.ErrEmptySet and leaves the
// controller untouched.
func (c *Controller) Start(questions []quiz.Question) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.cancelled:
		return ErrCancelled
	case c.status != StatusNotStarted:
		return ErrAlreadyStarted
	case len(questions) == 0:
		return quiz.ErrEmptySet
	}

	c.questions = append([]quiz.Question(nil), questions...)
	c.answers = make([]quiz.Answer, len(questions))
	c.records = make([]Record, 0, len(questions))
	c.index = 0
	c.score = 0
	c.selected = quiz.Unanswered
	c.status = StatusInProgress
	c.startedAt = c.clock.Now()
	c.startTimerLocked()
	return nil
}

// Select records option as the current choice. It returns false when the
// session is not in progress, or when the choice is locked.
func (c *Controller) Select(option string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.activeLocked() || c.locked {
		return false
	}
	c.selected = quiz.Chose(option)
	if c.lockOnSelect {
		c.locked = true
	}
	return true
}

// NextEnabled reports whether the learner may advance: an option has been
// selected or the countdown has expired.
func (c *Controller) NextEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextEnabledLocked()
}

// Next is the learner's "next question" action. It is a no-op until
// NextEnabled is true.
func (c *Controller) Next() bool {
	c.mu.Lock()
	if !c.nextEnabledLocked() {
		c.mu.Unlock()
		return false
	}
	fire, ok := c.advanceLocked(TriggerManual)
	c.mu.Unlock()

	fire()
	return ok
}

// Advance moves past the current question. Calls that arrive while another
// transition holds the guard are dropped and return false.
func (c *Controller) Advance(trigger Trigger) bool {
	c.mu.Lock()
	fire, ok := c.advanceLocked(trigger)
	c.mu.Unlock()

	fire()
	return ok
}

// Cancel stops the timer and ends the session without further mutation.
// OnCancel fires once; later calls and calls after completion do nothing.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	if c.cancelled || c.status == StatusCompleted {
		c.mu.Unlock()
		return false
	}
	c.cancelled = true
	c.stopTimerLocked()
	c.guard.reset()
	onCancel := c.hooks.OnCancel
	c.mu.Unlock()

	if onCancel != nil {
		onCancel()
	}
	return true
}

// Snapshot returns a consistent copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Elapsed returns the time since Start, zero before the session started.
func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.startedAt.IsZero() {
		return 0
	}
	return c.clock.Now().Sub(c.startedAt)
}

// advanceLocked is the single transition path shared by timeouts and
// learner actions. It returns the hook calls to make once the lock is released.
func (c *Controller) advanceLocked(trigger Trigger) (func(), bool) {
	if !c.activeLocked() {
		return noop, false
	}
	gen, ok := c.guard.tryAcquire()
	if !ok {
		return noop, false
	}

	c.stopTimerLocked()

	idx := c.index
	q := c.questions[idx]
	ans := c.selected
	correct := q.IsCorrect(ans)

	c.answers[idx] = ans
	if correct {
		c.score++
	}
	now := c.clock.Now()
	rec := Record{
		Index:            idx,
		Answer:           ans,
		Correct:          correct,
		Trigger:          trigger,
		SecondsRemaining: c.remaining,
		Elapsed:          now.Sub(c.questionStartedAt),
	}
	c.records = append(c.records, rec)

	var result *Result
	if idx+1 == len(c.questions) {
		c.status = StatusCompleted
		res := c.resultLocked(now)
		result = &res
	} else {
		c.index++
		c.selected = quiz.Unanswered
		c.locked = false
		c.startTimerLocked()
	}
	next := c.snapshotLocked()

	c.clock.AfterFunc(c.grace, func() {
		c.mu.Lock()
		c.guard.release(gen)
		c.mu.Unlock()
	})

	hooks := c.hooks
	return func() {
		if hooks.OnAdvance != nil {
			hooks.OnAdvance(rec, next)
		}
		if result != nil && hooks.OnComplete != nil {
			hooks.OnComplete(*result)
		}
	}, true
}

// tick handles one second of the countdown started with generation gen.
func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.timerGen || !c.activeLocked() {
		c.mu.Unlock()
		return
	}
	if c.remaining > 0 {
		c.remaining--
	}
	idx, remaining := c.index, c.remaining

	fire := noop
	if remaining == 0 {
		c.expired = true
		c.stopTimerLocked()
		fire, _ = c.advanceLocked(TriggerTimeout)
	}
	onTick := c.hooks.OnTick
	c.mu.Unlock()

	if onTick != nil {
		onTick(idx, remaining)
	}
	fire()
}

func (c *Controller) startTimerLocked() {
	c.stopTimerLocked()
	c.remaining = QuestionSeconds
	c.expired = false
	c.questionStartedAt = c.clock.Now()
	c.timerGen++
	gen := c.timerGen
	c.stopTimer = c.clock.Every(time.Second, func() { c.tick(gen) })
}

func (c *Controller) stopTimerLocked() {
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
}

func (c *Controller) activeLocked() bool {
	return c.status == StatusInProgress && !c.cancelled
}

func (c *Controller) nextEnabledLocked() bool {
	return c.activeLocked() && (c.selected.Answered || c.expired)
}

func (c *Controller) resultLocked(now time.Time) Result {
	return Result{
		SessionID: c.id,
		Score:     c.score,
		Total:     len(c.questions),
		Answers:   append([]quiz.Answer(nil), c.answers...),
		Records:   append([]Record(nil), c.records...),
		StartedAt: c.startedAt,
		Duration:  now.Sub(c.startedAt),
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		SessionID:        c.id,
		Status:           c.status,
		Cancelled:        c.cancelled,
		Index:            c.index,
		Total:            len(c.questions),
		Selected:         c.selected,
		Locked:           c.locked,
		Answers:          append([]quiz.Answer(nil), c.answers...),
		Score:            c.score,
		SecondsRemaining: c.remaining,
		Expired:          c.expired,
		NextEnabled:      c.nextEnabledLocked(),
	}
	if c.index < len(c.questions) {
		s.Question = c.questions[c.index]
	}
	return s
}

func noop() {}
