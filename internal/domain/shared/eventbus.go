package shared

import "context"

// Handler reacts to an event. A returned error is reported by the bus and
// does not stop delivery to the remaining handlers.
type Handler func(ctx context.Context, event Event) error

// Subscription identifies one registered handler
type Subscription struct {
	ID   uint64
	Name EventName
}

// Valid reports whether the subscription was issued by a bus
func (s Subscription) Valid() bool {
	return s.ID != 0
}

// EventPublisher emits events
type EventPublisher interface {
	// Emit delivers the event synchronously to every handler subscribed to
	// name at the moment Emit is called, in subscription order
	Emit(ctx context.Context, name EventName, payload any)
}

// EventSubscriber manages subscriptions
type EventSubscriber interface {
	// Subscribe registers a handler for an exact event name
	Subscribe(name EventName, handler Handler) Subscription
	// Unsubscribe removes a handler; unknown subscriptions are ignored
	Unsubscribe(sub Subscription)
}

// EventBus combines publisher and subscriber capabilities
type EventBus interface {
	EventPublisher
	EventSubscriber
}

// ErrorReporter receives handler failures collected during dispatch
type ErrorReporter func(name EventName, err error)
