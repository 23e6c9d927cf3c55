// Package scheduler runs session work on a single goroutine and defers
// tasks until input settles.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Task is a unit of work executed on the loop goroutine. ctx is the context
// passed to Run.
type Task func(ctx context.Context)

// Poster hands tasks to a loop
type Poster interface {
	Post(task Task) bool
}

// Loop executes posted tasks one at a time, in order, on the goroutine that
// called Run. Every task runs to completion before the next one starts, so
// state touched only from tasks needs no locking.
type Loop struct {
	logger *zap.Logger

	mu      sync.Mutex
	queue   []Task
	running bool
	stopped bool

	wake     chan struct{}
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoop creates a loop. Tasks posted before Run are kept and executed once
// it starts.
func NewLoop(logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		logger: logger,
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Run executes tasks until ctx is cancelled or Stop is called. Pending tasks
// are dropped on exit.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running || l.stopped {
		l.mu.Unlock()
		return ErrLoopAlreadyRunning
	}
	l.running = true
	l.mu.Unlock()

	defer close(l.done)
	l.logger.Debug("Loop started")

	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			return ctx.Err()
		case <-l.quit:
			l.shutdown()
			return nil
		case <-l.wake:
		}

		for {
			select {
			case <-l.quit:
				l.shutdown()
				return nil
			default:
			}
			task, ok := l.next()
			if !ok {
				break
			}
			l.execute(ctx, task)
		}
	}
}

// Post queues a task. It never blocks and returns false once the loop has
// stopped.
func (l *Loop) Post(task Task) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, task)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs task on the loop and waits for it to finish. It must not be called
// from a task running on the same loop.
func (l *Loop) Do(ctx context.Context, task Task) error {
	result := make(chan error, 1)
	posted := l.Post(func(loopCtx context.Context) {
		result <- l.safeRun(loopCtx, task)
	})
	if !posted {
		return ErrLoopStopped
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrLoopStopped
		}
	}
}

// Stop asks the loop to exit after the current task. It does not wait; use
// Done for that.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.quit)
	})
}

// Done is closed when Run returns
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Pending returns the number of queued tasks
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) next() (Task, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task, true
}

func (l *Loop) shutdown() {
	l.mu.Lock()
	dropped := len(l.queue)
	l.stopped = true
	l.running = false
	l.queue = nil
	l.mu.Unlock()

	l.logger.Debug("Loop stopped", zap.Int("dropped_tasks", dropped))
}

func (l *Loop) execute(ctx context.Context, task Task) {
	if err := l.safeRun(ctx, task); err != nil {
		l.logger.Error("Loop task failed", zap.Error(err))
	}
}

func (l *Loop) safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	task(ctx)
	return nil
}
