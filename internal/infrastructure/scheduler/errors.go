package scheduler

import "errors"

var (
	// ErrLoopStopped is returned when a task is handed to a loop that has stopped
	ErrLoopStopped = errors.New("loop is stopped")

	// ErrLoopAlreadyRunning is returned when Run is called twice
	ErrLoopAlreadyRunning = errors.New("loop is already running")

	// ErrTaskPanicked is returned by Do when the task panicked
	ErrTaskPanicked = errors.New("task panicked")

	// ErrInvalidDelay is returned for a non-positive debounce delay
	ErrInvalidDelay = errors.New("debounce delay must be positive")
)
