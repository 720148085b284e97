package feed

import (
	"sync"
	"time"
)

// DefaultDebounceInterval is the quiescence window applied to free-text
// search input before it becomes the settled query.
const DefaultDebounceInterval = 500 * time.Millisecond

// Debouncer collapses a stream of raw text values into a single settled value
// emitted once no new input has arrived for the configured window. Every new
// input resets the window (trailing debounce, not throttling). The empty
// string is a first-class value: clearing a search settles exactly like
// typing one.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	emit  func(string)
}

// NewDebouncer creates a debouncer that calls emit with the settled value on
// the timer goroutine.
func NewDebouncer(delay time.Duration, emit func(string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounceInterval
	}
	return &Debouncer{delay: delay, emit: emit}
}

// Input records a new raw value and restarts the quiescence window.
func (d *Debouncer) Input(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.emit(value)
	})
}

// Cancel drops any pending value without emitting it. Used when filters
// replace the search session entirely.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
