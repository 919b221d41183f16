package bridge

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of Schedule calls into a single commit that
// runs once the burst has been quiet for the configured delay. Flush runs
// a pending commit immediately, which is how shutdown avoids losing the
// last edits of a burst.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending bool
	commit  func()
}

func NewDebouncer(delay time.Duration, commit func()) *Debouncer {
	return &Debouncer{
		delay:  delay,
		commit: commit,
	}
}

// Schedule arms the timer, restarting it if already armed. The commit fires
// on the timer goroutine after the delay elapses with no further calls.
func (d *Debouncer) Schedule() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = true
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()

	d.commit()
}

// Flush runs a pending commit synchronously. No-op when nothing is pending.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
	d.mu.Unlock()

	d.commit()
}

// CancelPending drops a pending commit without running it.
func (d *Debouncer) CancelPending() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
}

// Pending reports whether a commit is armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
