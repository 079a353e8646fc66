// Package nego implements the negotiation orchestrator: a single-threaded
// state machine that consumes broker protocol events, evaluates offers
// against price thresholds, drives the contract handshake, and paces its own
// outbound actions.
//
// All negotiator state is confined to one serial event loop. Protocol events
// and timer firings are posted into the same loop, so handlers run to
// completion with no preemption and need no locks.
package nego

import (
	"context"
	"log/slog"
	"time"
)

// Loop is the serial event stream. Everything that touches negotiator state
// runs as a thunk drained from a single channel by one goroutine.
type Loop struct {
	ch     chan func()
	logger *slog.Logger
}

// NewLoop creates an event loop with a bounded post buffer.
func NewLoop(logger *slog.Logger) *Loop {
	return &Loop{
		ch:     make(chan func(), 256),
		logger: logger.With(slog.String("component", "event_loop")),
	}
}

// Post enqueues fn for execution on the loop goroutine. It blocks if the
// buffer is full; offer volume is low enough that this never matters in
// practice.
func (l *Loop) Post(fn func()) {
	l.ch <- fn
}

// Run drains the loop until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("event loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("event loop stopped")
			return ctx.Err()
		case fn := <-l.ch:
			fn()
		}
	}
}

// CancelFunc cancels a scheduled callback. Idempotent.
type CancelFunc func()

// Scheduler posts a callback into the event loop after a delay. The
// production implementation uses real timers; tests substitute a manual one
// so timer-driven paths run deterministically.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) CancelFunc
}

type loopScheduler struct {
	loop *Loop
}

// NewScheduler returns a Scheduler that fires callbacks through the given
// loop, preserving single-threaded ordering.
func NewScheduler(loop *Loop) Scheduler {
	return &loopScheduler{loop: loop}
}

func (s *loopScheduler) Schedule(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, func() {
		s.loop.Post(fn)
	})
	return func() { t.Stop() }
}
