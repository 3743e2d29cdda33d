package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// DefaultSinkTimeout bounds a single sink delivery.
const DefaultSinkTimeout = 10 * time.Second

// Sink consumes finished outcomes.
type Sink interface {
	Deliver(ctx context.Context, o Outcome) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, o Outcome) error

func (f SinkFunc) Deliver(ctx context.Context, o Outcome) error {
	return f(ctx, o)
}

// Emitter fans an outcome out to its sinks, each on its own goroutine.
// Emit never blocks on a sink and sink errors never reach the caller; they
// are written to the warning output.
type Emitter struct {
	sinks   []Sink
	timeout time.Duration

	mu   sync.Mutex
	warn io.Writer
	wg   sync.WaitGroup
}

// NewEmitter returns an emitter delivering to sinks and warning on stderr.
func NewEmitter(sinks ...Sink) *Emitter {
	return &Emitter{
		sinks:   sinks,
		timeout: DefaultSinkTimeout,
		warn:    os.Stderr,
	}
}

// SetWarningOutput redirects sink failure warnings.
func (e *Emitter) SetWarningOutput(w io.Writer) {
	e.mu.Lock()
	e.warn = w
	e.mu.Unlock()
}

// SetTimeout changes the per-sink delivery timeout.
func (e *Emitter) SetTimeout(d time.Duration) {
	if d > 0 {
		e.timeout = d
	}
}

// Emit delivers o to every sink and returns immediately.
func (e *Emitter) Emit(o Outcome) {
	for _, s := range e.sinks {
		e.wg.Add(1)
		go e.deliver(s, o)
	}
}

// Wait blocks until every delivery started by Emit has finished.
func (e *Emitter) Wait() {
	e.wg.Wait()
}

func (e *Emitter) deliver(s Sink, o Outcome) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.warnf("report sink %s panicked: %v", sinkName(s), r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	if err := s.Deliver(ctx, o); err != nil {
		e.warnf("report sink %s: %v", sinkName(s), err)
	}
}

func (e *Emitter) warnf(format string, args ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintf(e.warn, "warning: "+format+"\n", args...)
}

func sinkName(s Sink) string {
	if n, ok := s.(fmt.Stringer); ok {
		return n.String()
	}
	return fmt.Sprintf("%T", s)
}
