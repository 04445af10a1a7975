package listutil

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of calls into one, firing the last function
// after a quiet period. Typing in a search box triggers one query instead
// of one per keystroke.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given quiet period.
// PRE: delay > 0
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Do schedules fn to run after the quiet period, cancelling any
// previously scheduled call.
// PRE: fn is non-nil
// POST: At most one pending call exists; the latest fn wins
func (d *Debouncer) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending call.
// POST: No scheduled call remains
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
