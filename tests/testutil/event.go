// Package testutil provides common test utilities for the storefront.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Dradcheenko/weblarek/internal/domain/shared"
)

// EventRecorder is a shared.EventPublisher that records every emitted event.
type EventRecorder struct {
	mu     sync.Mutex
	events []shared.Event
}

// NewEventRecorder creates an empty recorder.
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{}
}

// Emit records the event.
func (r *EventRecorder) Emit(ctx context.Context, name shared.EventName, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, shared.NewEvent(name, payload))
}

// Events returns all recorded events.
func (r *EventRecorder) Events() []shared.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]shared.Event, len(r.events))
	copy(result, r.events)
	return result
}

// Count returns how many events with the given name were recorded.
func (r *EventRecorder) Count(name shared.EventName) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Name == name {
			n++
		}
	}
	return n
}

// Last returns the most recent event with the given name.
func (r *EventRecorder) Last(name shared.EventName) (shared.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Name == name {
			return r.events[i], true
		}
	}
	return shared.Event{}, false
}

// Reset clears all recorded events.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// WaitForCondition waits for a condition to become true.
// Returns true if the condition was met, false if timeout occurred.
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return false
}
