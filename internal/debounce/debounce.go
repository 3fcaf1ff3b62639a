// Package debounce coalesces bursts of events into a single call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs fn once a burst of Trigger calls has been quiet for the
// configured interval. Each Trigger restarts the wait, so there is never
// more than one run pending.
type Debouncer struct {
	quiet time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64 // identifies the pending run; bumped by Trigger and Stop
	stopped bool
}

// New returns a Debouncer that calls fn on its own goroutine.
func New(quiet time.Duration, fn func()) *Debouncer {
	return &Debouncer{quiet: quiet, fn: fn}
}

// Trigger schedules fn, superseding any run that has not started yet.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.stopped {
		// A timer that could not be stopped in time.
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels the pending run. Later Triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
