package session

import (
	"sync"
	"time"
)

// Clock is the timer facility a Controller runs on. Every schedules a
// repeating callback, AfterFunc a one-shot callback; both return a stop
// function that is safe to call more than once and from inside the callback.
type Clock interface {
	Now() time.Time
	Every(d time.Duration, fn func()) (stop func())
	AfterFunc(d time.Duration, fn func()) (stop func())
}

// SystemClock is the wall-clock implementation backed by the time package.
type SystemClock struct{}

var _ Clock = SystemClock{}

func (SystemClock) Now() time.Time { return time.Now() }

// Every runs fn on its own goroutine once per d until stopped.
func (SystemClock) Every(d time.Duration, fn func()) func() {
	t := time.NewTicker(d)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-done:
				return
			case <-t.C:
				// A tick already in flight when stop is called is dropped here.
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	return func() {
		once.Do(func() {
			t.Stop()
			close(done)
		})
	}
}

func (SystemClock) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
