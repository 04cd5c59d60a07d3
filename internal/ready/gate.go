// Package ready gates the initial inbox load on the two asynchronous
// preconditions the service depends on: an established session and a
// usable local store. Callers poll via [Gate.Wait], which retries with
// capped exponential backoff instead of busy-looping.
package ready

import (
	"context"
	"errors"
	"time"
)

// ErrNotReady is returned by [Gate.Wait] when the preconditions fail to
// converge within the configured number of attempts.
var ErrNotReady = errors.New("preconditions did not converge")

// Snapshot is a point-in-time read of both preconditions.
//
// Checks must read fresh state on every call; the gate never caches a
// snapshot across attempts.
type Snapshot struct {
	SessionPresent bool
	StorageReady   bool
}

func (s Snapshot) converged() bool {
	return s.SessionPresent && s.StorageReady
}

// Timer returns a channel that fires once after d. It exists so tests can
// substitute a fake and observe the requested delays without real time
// passing.
type Timer = func(d time.Duration) <-chan time.Time

type Option = func(g *Gate)

func WithAttempts(attempts int) Option {
	if attempts < 1 {
		panic("attempts can't be < 1")
	}
	return func(g *Gate) {
		g.attempts = attempts
	}
}

func WithBaseDelay(base time.Duration) Option {
	if base <= 0 {
		panic("base delay can't be <= 0")
	}
	return func(g *Gate) {
		g.baseDelay = base
	}
}

func WithMaxDelay(max time.Duration) Option {
	if max <= 0 {
		panic("max delay can't be <= 0")
	}
	return func(g *Gate) {
		g.maxDelay = max
	}
}

func WithTimer(timer Timer) Option {
	if timer == nil {
		panic("timer can't be nil")
	}
	return func(g *Gate) {
		g.timer = timer
	}
}

// Gate retries a precondition check with capped exponential backoff.
//
// A Gate is stateless between calls; each call to Wait owns its own retry
// sequence. A single Wait call runs its attempts strictly sequentially.
type Gate struct {
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	timer     Timer
}

// NewGate returns a Gate with the default policy: 5 attempts with delays
// of 2, 4, 8, 10 and 10 seconds between checks.
func NewGate(options ...Option) *Gate {
	g := &Gate{
		attempts:  5,
		baseDelay: time.Second,
		maxDelay:  10 * time.Second,
		timer:     time.After,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Wait blocks until check reports both preconditions true, the attempts
// are exhausted, or ctx is cancelled.
//
// The first check happens immediately; if it converges no delay is taken
// and initStorage is never called. Otherwise, if storage is not ready,
// initStorage fires exactly once before the retry sequence starts (it must
// be idempotent and non-blocking). Each subsequent attempt waits
// min(base<<attempt, max) and re-reads a fresh snapshot.
//
// Returns nil on convergence, [ErrNotReady] after the final attempt, or
// ctx.Err() if cancelled while waiting. Cancellation wins over any pending
// attempt: no outcome is reported once ctx is done.
func (g *Gate) Wait(ctx context.Context, check func() Snapshot, initStorage func()) error {
	snap := check()
	if snap.converged() {
		return nil
	}

	if !snap.StorageReady && initStorage != nil {
		initStorage()
	}

	for attempt := 1; attempt <= g.attempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-g.timer(g.delay(attempt)):
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if check().converged() {
			return nil
		}
	}

	return ErrNotReady
}

func (g *Gate) delay(attempt int) time.Duration {
	d := g.baseDelay << uint(attempt)
	if d > g.maxDelay {
		d = g.maxDelay
	}
	return d
}
