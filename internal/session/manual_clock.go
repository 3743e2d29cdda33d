package session

import (
	"sync"
	"time"
)

// ManualClock is a Clock that only moves when told to. Callbacks run
// synchronously on the goroutine calling Advance, in due-time order, which
// makes timer-driven sessions deterministic in tests and replays.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	nextID  int
	pending []*manualTimer
}

type manualTimer struct {
	id       int
	due      time.Time
	interval time.Duration // zero for one-shot timers
	fn       func()
	stopped  bool
}

var _ Clock = (*ManualClock)(nil)

// NewManualClock returns a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Every(d time.Duration, fn func()) func() {
	return c.schedule(d, d, fn)
}

func (c *ManualClock) AfterFunc(d time.Duration, fn func()) func() {
	return c.schedule(d, 0, fn)
}

func (c *ManualClock) schedule(after, interval time.Duration, fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &manualTimer{id: c.nextID, due: c.now.Add(after), interval: interval, fn: fn}
	c.pending = append(c.pending, t)
	return func() {
		c.mu.Lock()
		t.stopped = true
		c.mu.Unlock()
	}
}

// Advance moves the clock forward by d, firing every callback that falls due.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		next := c.nextDueLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = next.due
		if next.interval > 0 {
			next.due = next.due.Add(next.interval)
		} else {
			next.stopped = true
		}
		fn := next.fn
		c.mu.Unlock()

		fn()
	}
}

// Tick advances the clock by one second.
func (c *ManualClock) Tick() {
	c.Advance(time.Second)
}

// Active returns the number of timers that have not been stopped.
func (c *ManualClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compactLocked()
	return len(c.pending)
}

func (c *ManualClock) nextDueLocked(target time.Time) *manualTimer {
	c.compactLocked()
	var next *manualTimer
	for _, t := range c.pending {
		if t.due.After(target) {
			continue
		}
		if next == nil || t.due.Before(next.due) || (t.due.Equal(next.due) && t.id < next.id) {
			next = t
		}
	}
	return next
}

func (c *ManualClock) compactLocked() {
	live := c.pending[:0]
	for _, t := range c.pending {
		if !t.stopped {
			live = append(live, t)
		}
	}
	c.pending = live
}
