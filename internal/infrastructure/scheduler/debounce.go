package scheduler

import (
	"context"
	"sync"
	"time"
)

// Debouncer delays a task until Trigger has not been called for the
// configured delay. The task runs on the loop it was created with.
type Debouncer struct {
	loop  Poster
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	pending bool
}

// NewDebouncer creates a debouncer posting onto loop
func NewDebouncer(loop Poster, delay time.Duration) (*Debouncer, error) {
	if delay <= 0 {
		return nil, ErrInvalidDelay
	}
	return &Debouncer{loop: loop, delay: delay}, nil
}

// Trigger schedules task, replacing any task that has not run yet
func (d *Debouncer) Trigger(task Task) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	id := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = true
	d.timer = time.AfterFunc(d.delay, func() {
		d.loop.Post(func(ctx context.Context) {
			if !d.claim(id) {
				return
			}
			task(ctx)
		})
	})
}

// Cancel drops the scheduled task, if any. A timer that already fired but
// whose task is still queued on the loop will not run it either.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a task is scheduled and has not run yet
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Delay returns the quiet period
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

func (d *Debouncer) claim(id uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pending || d.seq != id {
		return false
	}
	d.pending = false
	d.timer = nil
	return true
}
