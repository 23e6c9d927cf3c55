package headless

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Dradcheenko/weblarek/internal/application/storefront"
	"github.com/Dradcheenko/weblarek/internal/domain/cart"
	"github.com/Dradcheenko/weblarek/internal/domain/catalog"
	"github.com/Dradcheenko/weblarek/internal/domain/customer"
	"github.com/Dradcheenko/weblarek/internal/domain/order"
	"github.com/Dradcheenko/weblarek/internal/domain/shared"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/event"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/logger"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/scheduler"
)

// Config tunes a session
type Config struct {
	CDNURL          string
	ValidationDelay time.Duration
}

// Deps are the outside collaborators of a session. Metrics and
// ErrorReporter are optional.
type Deps struct {
	Source        catalog.Source
	Gateway       order.Gateway
	Logger        *zap.Logger
	Metrics       storefront.OrderRecorder
	ErrorReporter shared.ErrorReporter
}

// Session is one storefront visit: models, views and presenter sharing a
// bus and a loop. Every interaction runs on the loop and returns what the
// visitor would see afterwards.
type Session struct {
	id        string
	loop      *scheduler.Loop
	bus       *event.InMemoryEventBus
	presenter *storefront.Presenter
	logger    *zap.Logger
	started   atomic.Bool

	prices    *PriceFormatter
	cards     *CardFactory
	modal     *ModalView
	header    *HeaderView
	gallery   *GalleryView
	preview   *PreviewView
	basket    *BasketView
	orderForm *FormView
	contacts  *FormView
	success   *SuccessView
}

// NewSession builds a session. It fails when a required collaborator is missing.
func NewSession(cfg Config, deps Deps) (*Session, error) {
	log := logger.Named(deps.Logger, "session")

	var busOpts []event.Option
	if deps.ErrorReporter != nil {
		busOpts = append(busOpts, event.WithErrorReporter(deps.ErrorReporter))
	}
	bus := event.NewInMemoryEventBus(logger.Named(log, "bus"), busOpts...)
	loop := scheduler.NewLoop(logger.Named(log, "loop"))
	prices := NewPriceFormatter()

	s := &Session{
		id:        uuid.New().String(),
		loop:      loop,
		bus:       bus,
		logger:    log,
		prices:    prices,
		cards:     NewCardFactory(cfg.CDNURL, prices),
		modal:     NewModalView(bus),
		header:    NewHeaderView(bus),
		gallery:   NewGalleryView(),
		preview:   NewPreviewView(cfg.CDNURL, prices),
		basket:    NewBasketView(bus, prices),
		orderForm: NewOrderFormView(bus),
		contacts:  NewContactsFormView(bus),
		success:   NewSuccessView(),
	}

	presenter, err := storefront.New(storefront.Deps{
		Bus:      bus,
		Loop:     loop,
		Catalog:  catalog.NewCatalog(bus),
		Cart:     cart.NewCart(bus),
		Customer: customer.NewCustomer(bus),
		Source:   deps.Source,
		Gateway:  deps.Gateway,
		Logger:   deps.Logger,
		Metrics:  deps.Metrics,
		Views: storefront.Views{
			Modal:        s.modal,
			Header:       s.header,
			Gallery:      s.gallery,
			Cards:        s.cards,
			Preview:      s.preview,
			Basket:       s.basket,
			OrderForm:    s.orderForm,
			ContactsForm: s.contacts,
			Success:      s.success,
		},
	}, storefront.Options{ValidationDelay: cfg.ValidationDelay})
	if err != nil {
		return nil, fmt.Errorf("create presenter: %w", err)
	}
	s.presenter = presenter
	return s, nil
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// State returns the checkout state
func (s *Session) State() storefront.CheckoutState {
	return s.presenter.State()
}

// Start runs the session loop until ctx is done or Close is called, and
// begins loading the catalog.
func (s *Session) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return storefront.ErrAlreadyStarted
	}
	ctx = s.withSession(ctx)

	if err := s.presenter.Start(ctx); err != nil {
		return err
	}
	go func() {
		if err := s.loop.Run(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("Session loop exited", zap.Error(err))
		}
	}()

	s.logger.Info("Session started", zap.String("session_id", s.id))
	return nil
}

// Close stops the loop and waits for in-flight network calls
func (s *Session) Close() {
	s.presenter.Close()
	s.loop.Stop()
	if s.started.Load() {
		<-s.loop.Done()
	}
}

// Snapshot returns the current display
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	return s.interact(ctx, func(context.Context) error { return nil })
}

// OpenBasket clicks the header basket button
func (s *Session) OpenBasket(ctx context.Context) (Snapshot, error) {
	return s.interact(ctx, func(ctx context.Context) error {
		if err := s.presenter.Allows(shared.EventBasketOpen); err != nil {
			return err
		}
		s.header.Click(ctx)
		return nil
	})
}

// SelectProduct clicks a gallery card
func (s *Session) SelectProduct(ctx context.Context, productID string) (Snapshot, error) {
	return s.interact(ctx, func(ctx context.Context) error {
		return s.gallery.Click(ctx, productID)
	})
}

// TogglePreview clicks the buy button of the preview
func (s *Session) TogglePreview(ctx context.Context) (Snapshot, error) {
	return s.interact(ctx, func(ctx context.Context) error {
		if s.modal.Content() != s.preview {
			return shared.ErrInvalidState
		}
		return s.preview.ClickButton(ctx)
	})
}

// RemoveFromBasket clicks the delete button of a basket row
func (s *Session) RemoveFromBasket(ctx context.Context, productID string) (Snapshot, error) {
	return s.interact(ctx, func(ctx context.Context) error {
		if s.modal.Content() != s.basket {
			return shared.ErrInvalidState
		}
		return s.basket.ClickDelete(ctx, productID)
	})
}

// StartOrder clicks the order button of the basket
func (s *Session) StartOrder(ctx context.Context) (Snapshot, error) {
	return s.interact(ctx, func(ctx context.Context) error {
		if err := s.presenter.Allows(shared.EventOrderOpen); err != nil {
			return err
		}
		return s.basket.ClickSubmit(ctx)
	})
}

// ChangeField types into a field of the open checkout step
func (s *Session) ChangeField(ctx context.Context, field customer.Field, value string) (Snapshot, error) {
	return s.interact(ctx, func(ctx context.Context) error {
		if _, ok := customer.ParseField(string(field)); !ok {
			return shared.ErrInvalidInput
		}
		if err := s.presenter.Allows(shared.EventBuyerChange); err != nil {
			return err
		}
		form, ok := s.modal.Content().(*FormView)
		if !ok {
			return shared.ErrInvalidState
		}
		return form.Input(ctx, field, value)
	})
}

// SubmitOrderForm submits the payment and address step
func (s *Session) SubmitOrderForm(ctx context.Context) (Snapshot, error) {
	return s.interact(ctx, func(ctx context.Context) error {
		if err := s.presenter.Allows(shared.EventContactsOpen); err != nil {
			return err
		}
		s.orderForm.ClickSubmit(ctx)
		return nil
	})
}

// SubmitContacts submits the contacts step and places the order
func (s *Session) SubmitContacts(ctx context.Context) (Snapshot, error) {
	return s.interact(ctx, func(ctx context.Context) error {
		if err := s.presenter.Allows(shared.EventOrderSubmit); err != nil {
			return err
		}
		s.contacts.ClickSubmit(ctx)
		return nil
	})
}

// CloseModal clicks the modal close button
func (s *Session) CloseModal(ctx context.Context) (Snapshot, error) {
	return s.interact(ctx, func(ctx context.Context) error {
		if !s.modal.IsOpen() {
			return nil
		}
		s.modal.ClickClose(ctx)
		return nil
	})
}

// interact runs fn on the loop and captures the display in the same task.
// Handlers see the caller's context so request ids and spans carry through.
func (s *Session) interact(ctx context.Context, fn func(ctx context.Context) error) (Snapshot, error) {
	ctx = s.withSession(ctx)

	var (
		snap      Snapshot
		actionErr error
	)
	err := s.loop.Do(ctx, func(context.Context) {
		actionErr = fn(ctx)
		snap = s.snapshot()
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, actionErr
}

func (s *Session) withSession(ctx context.Context) context.Context {
	ctx, _ = logger.WithSessionID(ctx, logger.FromContext(ctx), s.id)
	return ctx
}
