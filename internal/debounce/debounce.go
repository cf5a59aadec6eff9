// Package debounce coalesces bursts of calls into one trailing call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs the most recently triggered function once the wait has
// passed without another trigger.
type Debouncer struct {
	wait time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func New(wait time.Duration) *Debouncer {
	return &Debouncer{wait: wait}
}

// Trigger schedules fn, replacing anything still pending.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, fn)
}

// Stop cancels the pending call. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
