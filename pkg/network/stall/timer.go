package stall

import (
	"sync"
	"time"
)

// Timer is a cancellable, self-rearming ticker: f is invoked on every
// tick until Done is called, at which point cleanup runs exactly once.
// It backs the handshake and ping timeout handles (spec.md §9,
// "cancellable timer handle").
type Timer struct {
	Timer *time.Ticker

	f       func(*Timer)
	cleanup func(*Timer)
	once    sync.Once
}

// NewTimer starts a Timer ticking every interval.
func NewTimer(interval time.Duration, f func(*Timer), cleanup func(*Timer)) *Timer {
	t := &Timer{
		Timer:   time.NewTicker(interval),
		f:       f,
		cleanup: cleanup,
	}
	go func() {
		for range t.Timer.C {
			t.f(t)
		}
	}()
	return t
}

// Done stops the ticker and runs the cleanup callback. Safe to call
// more than once or concurrently; only the first call has effect.
func (t *Timer) Done() {
	t.once.Do(func() {
		t.Timer.Stop()
		t.cleanup(t)
	})
}
