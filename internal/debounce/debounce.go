// Package debounce provides the primitive sitting between a bursty input
// (typing, rapid mutations) and an expensive follow-up (a list fetch, a
// board re-render): only the last trigger of a burst runs, and a newer
// trigger cancels the context of a still-running older one.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Debouncer coalesces triggers into one delayed call. Safe for use from
// multiple goroutines.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timer  *time.Timer
	cancel context.CancelFunc
}

// New creates a debouncer with the given quiet period.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the quiet period. A trigger arriving
// before the period elapses replaces the scheduled fn and cancels the
// context handed to any previous fn, whether it ran yet or not.
func (d *Debouncer) Trigger(fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.timer = time.AfterFunc(d.delay, func() {
		fn(ctx)
	})
}

// Stop drops any pending call and cancels the context of a running one.
// The debouncer stays usable after Stop.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
