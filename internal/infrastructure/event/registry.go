package event

import (
	"sync"

	"github.com/Dradcheenko/weblarek/internal/domain/shared"
)

// registration is one handler bound to one event name
type registration struct {
	id      uint64
	handler shared.Handler
}

// HandlerRegistry manages event handler registrations
type HandlerRegistry struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[shared.EventName][]registration // name -> handlers in subscription order
	active   map[uint64]shared.EventName
}

// NewHandlerRegistry creates a new handler registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[shared.EventName][]registration),
		active:   make(map[uint64]shared.EventName),
	}
}

// Register appends a handler for an event name and returns its subscription
func (r *HandlerRegistry) Register(name shared.EventName, handler shared.Handler) shared.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.handlers[name] = append(r.handlers[name], registration{id: id, handler: handler})
	r.active[id] = name

	return shared.Subscription{ID: id, Name: name}
}

// Unregister removes the handler behind a subscription.
// Returns false if the subscription is unknown or already removed.
func (r *HandlerRegistry) Unregister(sub shared.Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.active[sub.ID]
	if !ok {
		return false
	}
	delete(r.active, sub.ID)

	r.handlers[name] = removeRegistration(r.handlers[name], sub.ID)
	if len(r.handlers[name]) == 0 {
		delete(r.handlers, name)
	}
	return true
}

// snapshot returns a copy of the handlers registered for name.
// Registrations made after the call are not part of the snapshot.
func (r *HandlerRegistry) snapshot(name shared.EventName) []registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := r.handlers[name]
	result := make([]registration, len(regs))
	copy(result, regs)
	return result
}

// IsActive reports whether a subscription is still registered
func (r *HandlerRegistry) IsActive(id uint64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.active[id]
	return ok
}

// Count returns the number of handlers registered for name
func (r *HandlerRegistry) Count(name shared.EventName) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handlers[name])
}

// removeRegistration removes a registration from a slice without mutating the
// backing array shared with earlier snapshots
func removeRegistration(regs []registration, id uint64) []registration {
	result := make([]registration, 0, len(regs))
	for _, reg := range regs {
		if reg.id != id {
			result = append(result, reg)
		}
	}
	return result
}
