package event

import (
	"context"
	"fmt"

	"github.com/Dradcheenko/weblarek/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus implements EventBus with synchronous in-process delivery
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	reporter shared.ErrorReporter
}

// Option configures an InMemoryEventBus
type Option func(*InMemoryEventBus)

// WithErrorReporter sets a callback that receives every handler failure
func WithErrorReporter(reporter shared.ErrorReporter) Option {
	return func(b *InMemoryEventBus) {
		b.reporter = reporter
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...Option) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Emit delivers an event to the handlers registered at call time.
// Handlers subscribed while the event is being dispatched wait for the next Emit;
// handlers unsubscribed mid-dispatch are skipped.
func (b *InMemoryEventBus) Emit(ctx context.Context, name shared.EventName, payload any) {
	regs := b.registry.snapshot(name)
	if len(regs) == 0 {
		return
	}

	evt := shared.NewEvent(name, payload)
	for _, reg := range regs {
		if !b.registry.IsActive(reg.id) {
			continue
		}
		if err := b.dispatchToHandler(ctx, reg.handler, evt); err != nil {
			// Log error but continue with other handlers
			b.logger.Error("handler failed to process event",
				zap.String("event", name.String()),
				zap.Uint64("subscription", reg.id),
				zap.Error(err),
			)
			if b.reporter != nil {
				b.reporter(name, err)
			}
		}
	}
}

// Subscribe registers a handler for an exact event name
func (b *InMemoryEventBus) Subscribe(name shared.EventName, handler shared.Handler) shared.Subscription {
	sub := b.registry.Register(name, handler)
	b.logger.Debug("handler subscribed",
		zap.String("event", name.String()),
		zap.Uint64("subscription", sub.ID),
	)
	return sub
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(sub shared.Subscription) {
	if b.registry.Unregister(sub) {
		b.logger.Debug("handler unsubscribed",
			zap.String("event", sub.Name.String()),
			zap.Uint64("subscription", sub.ID),
		)
	}
}

// SubscriberCount returns the number of handlers currently registered for name
func (b *InMemoryEventBus) SubscriberCount(name shared.EventName) int {
	return b.registry.Count(name)
}

// dispatchToHandler safely dispatches an event to a handler, turning a panic
// into an error
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.Handler, evt shared.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return handler(ctx, evt)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
