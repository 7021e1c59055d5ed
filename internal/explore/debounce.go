package explore

import (
	"sync"
	"time"
)

// Debouncer holds back search input until it has been quiet for window.
// Each Push restarts the countdown; only the last value is delivered.
type Debouncer struct {
	window  time.Duration
	deliver func(string)

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	pending string
	armed   bool
}

func NewDebouncer(window time.Duration, deliver func(string)) *Debouncer {
	return &Debouncer{window: window, deliver: deliver}
}

// Push replaces the pending value and restarts the countdown.
func (d *Debouncer) Push(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq
	d.pending = text
	d.armed = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.fire(seq) })
}

// Clear cancels the countdown and delivers "" right away.
func (d *Debouncer) Clear() {
	d.disarm()
	d.deliver("")
}

// Flush delivers the pending value now, if there is one.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if !d.armed {
		d.mu.Unlock()
		return
	}
	text := d.pending
	d.resetLocked()
	d.mu.Unlock()
	d.deliver(text)
}

// Stop cancels the countdown without delivering.
func (d *Debouncer) Stop() { d.disarm() }

// Pending reports the value waiting for the countdown.
func (d *Debouncer) Pending() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending, d.armed
}

func (d *Debouncer) disarm() {
	d.mu.Lock()
	d.resetLocked()
	d.mu.Unlock()
}

func (d *Debouncer) resetLocked() {
	d.seq++
	d.armed = false
	d.pending = ""
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// fire runs on the timer goroutine.  A timer that lost the race with a newer
// Push, Clear or Stop sees a different seq and does nothing.
func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || !d.armed {
		d.mu.Unlock()
		return
	}
	text := d.pending
	d.armed = false
	d.pending = ""
	d.timer = nil
	d.mu.Unlock()
	d.deliver(text)
}
