// Package search runs a reader's book search: keystrokes are debounced, the
// first page replaces the results and "load more" appends further pages.
package search

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay is the quiet period after the last keystroke before a search
// is sent.
const DefaultDelay = 2 * time.Second

// Debouncer runs only the last of a burst of calls. Each Trigger cancels the
// pending call and the context of a call already running.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

// NewDebouncer returns a Debouncer with the given quiet period, or
// DefaultDelay when delay is not positive.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run once the quiet period passes without another
// Trigger. fn receives a context derived from ctx that is cancelled if a
// later Trigger or Stop supersedes it.
func (d *Debouncer) Trigger(ctx context.Context, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.cancelLocked()

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.wg.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		defer cancel()
		if runCtx.Err() != nil {
			return
		}
		fn(runCtx)
	})
}

// Flush cancels anything pending without running it.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Stop cancels pending and running calls and waits for running ones to
// return. Later Triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.cancelLocked()
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Debouncer) cancelLocked() {
	if d.timer != nil && d.timer.Stop() {
		// The callback will never run, so it cannot mark itself done.
		d.wg.Done()
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.timer = nil
	d.cancel = nil
}
