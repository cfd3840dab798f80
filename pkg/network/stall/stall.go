// Package stall implements the liveness-detection primitive used to
// enforce both handshake and ping timeouts (spec.md §5, "Timeouts and
// cancellation"): a pending request is registered when sent, and if no
// matching response clears it within responseTime, the connection is
// considered stalled.
package stall

import (
	"sync"
	"time"

	"github.com/goldrelay/goldrelay/pkg/wire/command"
)

// Detector tracks in-flight commands awaiting a response and reports
// the ones that time out.
type Detector struct {
	mu             sync.Mutex
	responses      map[command.Type]time.Time
	responseTime   time.Duration
	tickerInterval time.Duration
	timer          *Timer
	onStall        func(command.Type)
}

// NewDetector returns a Detector that considers a pending command
// stalled once it has waited longer than responseTime, checking at
// tickerInterval granularity.
func NewDetector(responseTime, tickerInterval time.Duration) *Detector {
	d := &Detector{
		responses:      make(map[command.Type]time.Time),
		responseTime:   responseTime,
		tickerInterval: tickerInterval,
	}
	return d
}

// Run starts the background sweep that evicts stalled entries and
// invokes onStall for each one. It returns immediately; call Close to
// stop the sweep. The sweep itself runs on a Timer, the same
// cancellable-ticker primitive the handshake/ping timeout handles use.
func (d *Detector) Run(onStall func(command.Type)) {
	d.onStall = onStall
	d.timer = NewTimer(d.tickerInterval, func(*Timer) { d.sweep() }, func(*Timer) {})
}

func (d *Detector) sweep() {
	deadline := time.Now().Add(-d.responseTime)
	var stalled []command.Type
	d.mu.Lock()
	for cmd, sentAt := range d.responses {
		if sentAt.Before(deadline) {
			stalled = append(stalled, cmd)
			delete(d.responses, cmd)
		}
	}
	d.mu.Unlock()
	for _, cmd := range stalled {
		if d.onStall != nil {
			d.onStall(cmd)
		}
	}
}

// AddMessage registers cmd as sent and awaiting a response, starting
// its timeout clock now.
func (d *Detector) AddMessage(cmd command.Type) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses[cmd] = time.Now()
}

// RemoveMessage clears cmd, e.g. because its response arrived.
func (d *Detector) RemoveMessage(cmd command.Type) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.responses, cmd)
}

// GetMessages returns a snapshot of pending commands and when they
// were sent.
func (d *Detector) GetMessages() map[command.Type]time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[command.Type]time.Time, len(d.responses))
	for k, v := range d.responses {
		out[k] = v
	}
	return out
}

// Close stops the background sweep.
func (d *Detector) Close() {
	if d.timer != nil {
		d.timer.Done()
	}
}
