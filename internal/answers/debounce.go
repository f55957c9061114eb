package answers

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// stopper is the slice of *time.Timer the scheduler needs; tests substitute
// their own.
type stopper interface {
	Stop() bool
}

type afterFunc func(d time.Duration, fn func()) stopper

func realAfter(d time.Duration, fn func()) stopper {
	return time.AfterFunc(d, fn)
}

// Debouncer runs one trailing-edge timer per key. Scheduling a key that
// already has a pending timer replaces it without touching other keys, so a
// burst of edits on one question collapses to a single save while edits on
// other questions keep their own windows.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	after  afterFunc
	timers map[uuid.UUID]stopper
}

func NewDebouncer(window time.Duration) *Debouncer {
	return newDebouncer(window, realAfter)
}

func newDebouncer(window time.Duration, after afterFunc) *Debouncer {
	return &Debouncer{
		window: window,
		after:  after,
		timers: make(map[uuid.UUID]stopper),
	}
}

// Schedule arms (or re-arms) the timer for key. fn runs once after the window
// elapses with no further Schedule calls for that key.
func (d *Debouncer) Schedule(key uuid.UUID, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.timers[key] = d.after(d.window, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending timer for key, if any.
func (d *Debouncer) Cancel(key uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
}

// CancelAll drops every pending timer. Called on session teardown so timers
// do not leak across sessions.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, t := range d.timers {
		t.Stop()
		delete(d.timers, k)
	}
}

// Pending reports whether key has an armed timer.
func (d *Debouncer) Pending(key uuid.UUID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.timers[key]
	return ok
}
