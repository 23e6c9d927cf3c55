// Package storefront mediates between the storefront models and views.
//
// The presenter subscribes to every bus event, mutates the catalog, cart and
// customer models, and pushes derived state down into the views. Neither side
// knows about the other. All handlers run on the session loop; the two network
// calls run in goroutines and post their completion back onto the loop.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Dradcheenko/weblarek/internal/domain/cart"
	"github.com/Dradcheenko/weblarek/internal/domain/catalog"
	"github.com/Dradcheenko/weblarek/internal/domain/customer"
	"github.com/Dradcheenko/weblarek/internal/domain/order"
	"github.com/Dradcheenko/weblarek/internal/domain/shared"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/api"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/logger"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/scheduler"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/telemetry"
)

// Preview button labels
const (
	LabelUnavailable    = "Недоступно"
	LabelAddToCart      = "В корзину"
	LabelRemoveFromCart = "Удалить из корзины"
)

// MessageOrderFailed prefixes the error shown on the contacts form when the
// store rejects an order
const MessageOrderFailed = "Не удалось оформить заказ"

// DefaultValidationDelay is the quiet period before form errors are refreshed
const DefaultValidationDelay = 300 * time.Millisecond

// ErrAlreadyStarted is returned when Start is called twice
var ErrAlreadyStarted = errors.New("presenter already started")

// Deps are the collaborators of the presenter. Metrics is optional.
type Deps struct {
	Bus      shared.EventBus
	Loop     scheduler.Poster
	Catalog  *catalog.Catalog
	Cart     *cart.Cart
	Customer *customer.Customer
	Source   catalog.Source
	Gateway  order.Gateway
	Views    Views
	Logger   *zap.Logger
	Metrics  OrderRecorder
}

// Options tune the presenter
type Options struct {
	ValidationDelay time.Duration
}

// Presenter drives the checkout flow
type Presenter struct {
	bus      shared.EventBus
	loop     scheduler.Poster
	catalog  *catalog.Catalog
	cart     *cart.Cart
	customer *customer.Customer
	source   catalog.Source
	gateway  order.Gateway
	views    Views
	logger   *zap.Logger
	metrics  OrderRecorder

	validation *scheduler.Debouncer

	state   atomic.Int32
	started atomic.Bool
	loaded  bool
	subs    []shared.Subscription
	wg      sync.WaitGroup

	// loop-owned: an order call is running, and the failure not yet shown
	submitting bool
	failure    string
}

// New wires the presenter to its collaborators and subscribes it to the bus.
// A missing collaborator is a setup defect and yields ErrMissingCollaborator.
func New(deps Deps, opts Options) (*Presenter, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	delay := opts.ValidationDelay
	if delay == 0 {
		delay = DefaultValidationDelay
	}
	debouncer, err := scheduler.NewDebouncer(deps.Loop, delay)
	if err != nil {
		return nil, fmt.Errorf("create validation debouncer: %w", err)
	}

	p := &Presenter{
		bus:        deps.Bus,
		loop:       deps.Loop,
		catalog:    deps.Catalog,
		cart:       deps.Cart,
		customer:   deps.Customer,
		source:     deps.Source,
		gateway:    deps.Gateway,
		views:      deps.Views,
		logger:     logger.Named(deps.Logger, "presenter"),
		metrics:    deps.Metrics,
		validation: debouncer,
	}
	p.setState(StateIdle)

	p.subscribe(shared.EventCatalogChanged, p.onCatalogChanged)
	p.subscribe(shared.EventProductSelected, p.onProductSelected)
	p.subscribe(shared.EventCartChanged, p.onCartChanged)
	p.subscribe(shared.EventOrderUpdate, p.onOrderUpdate)
	p.subscribe(shared.EventBasketOpen, p.onBasketOpen)
	p.subscribe(shared.EventOrderOpen, p.onOrderOpen)
	p.subscribe(shared.EventContactsOpen, p.onContactsOpen)
	p.subscribe(shared.EventOrderSubmit, p.onOrderSubmit)
	p.subscribe(shared.EventBuyerChange, p.onBuyerChange)
	p.subscribe(shared.EventModalClose, p.onModalClose)

	p.views.Preview.OnToggle(p.togglePreview)

	return p, nil
}

func (d Deps) validate() error {
	required := []struct {
		name    string
		missing bool
	}{
		{"bus", d.Bus == nil},
		{"loop", d.Loop == nil},
		{"catalog", d.Catalog == nil},
		{"cart", d.Cart == nil},
		{"customer", d.Customer == nil},
		{"source", d.Source == nil},
		{"gateway", d.Gateway == nil},
		{"modal view", d.Views.Modal == nil},
		{"header view", d.Views.Header == nil},
		{"gallery view", d.Views.Gallery == nil},
		{"card factory", d.Views.Cards == nil},
		{"preview view", d.Views.Preview == nil},
		{"basket view", d.Views.Basket == nil},
		{"order form", d.Views.OrderForm == nil},
		{"contacts form", d.Views.ContactsForm == nil},
		{"success view", d.Views.Success == nil},
	}
	for _, r := range required {
		if r.missing {
			return fmt.Errorf("%w: %s", shared.ErrMissingCollaborator, r.name)
		}
	}
	return nil
}

// Start loads the catalog in the background
func (p *Presenter) Start(ctx context.Context) error {
	if !p.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		list, err := p.source.FetchProductList(ctx)
		p.post(func(loopCtx context.Context) {
			p.onCatalogLoaded(loopCtx, list, err)
		})
	}()
	return nil
}

// State returns the current checkout state. Safe to call from any goroutine.
func (p *Presenter) State() CheckoutState {
	return CheckoutState(p.state.Load())
}

// Close cancels pending validation, drops the bus subscriptions and waits for
// background network calls to return.
func (p *Presenter) Close() {
	p.validation.Cancel()
	for _, sub := range p.subs {
		p.bus.Unsubscribe(sub)
	}
	p.subs = nil
	p.wg.Wait()
}

// Allows reports whether the event would be acted on in the current state.
// It reads the models and must run on the loop.
func (p *Presenter) Allows(name shared.EventName) error {
	state := p.State()
	switch name {
	case shared.EventBasketOpen:
		if state == StateSubmitting {
			return shared.ErrSubmissionInFlight
		}
	case shared.EventOrderOpen:
		if state != StateBasketOpen {
			return shared.ErrInvalidState
		}
		if p.cart.TotalCount() == 0 {
			return shared.ErrEmptyCart
		}
	case shared.EventContactsOpen:
		if state != StateOrderForm {
			return shared.ErrInvalidState
		}
		if !p.formResult(p.views.OrderForm).Valid {
			return shared.ErrInvalidInput
		}
	case shared.EventOrderSubmit:
		if p.submitting {
			return shared.ErrSubmissionInFlight
		}
		if !state.IsContactsStep() {
			return shared.ErrInvalidState
		}
		if !p.formResult(p.views.ContactsForm).Valid {
			return shared.ErrInvalidInput
		}
		if p.cart.TotalCount() == 0 {
			return shared.ErrEmptyCart
		}
	case shared.EventBuyerChange:
		if !state.IsFormStep() {
			return shared.ErrInvalidState
		}
	}
	return nil
}

// SelectProduct is the catalog card callback for product
func (p *Presenter) SelectProduct(product catalog.Product) Action {
	return func(ctx context.Context) error {
		if s := p.State(); s != StateBrowsing && s != StatePreviewing {
			return shared.ErrInvalidState
		}
		return p.catalog.SetCurrentProduct(ctx, product)
	}
}

func (p *Presenter) subscribe(name shared.EventName, handler shared.Handler) {
	p.subs = append(p.subs, p.bus.Subscribe(name, p.guard(handler)))
}

// guard drops view events the current state does not accept
func (p *Presenter) guard(handler shared.Handler) shared.Handler {
	return func(ctx context.Context, evt shared.Event) error {
		if err := p.Allows(evt.Name); err != nil {
			p.log(ctx).Debug("Ignoring event",
				zap.String("event", evt.Name.String()),
				zap.Stringer("state", p.State()),
				zap.Error(err),
			)
			return nil
		}
		return handler(ctx, evt)
	}
}

func (p *Presenter) onCatalogLoaded(ctx context.Context, list catalog.ProductList, err error) {
	if err != nil {
		p.log(ctx).Warn("Failed to load catalog", zap.Error(err))
		return
	}
	p.loaded = true
	p.catalog.SaveProducts(ctx, list.Items)
}

func (p *Presenter) onCatalogChanged(ctx context.Context, _ shared.Event) error {
	products := p.catalog.Products()
	cards := make([]Card, 0, len(products))
	for _, product := range products {
		cards = append(cards, p.views.Cards.CatalogCard(product, p.SelectProduct(product)))
	}
	p.views.Gallery.SetCards(cards)

	if p.State() == StateIdle {
		p.loaded = true
		p.setState(StateBrowsing)
	}
	return nil
}

func (p *Presenter) onProductSelected(_ context.Context, evt shared.Event) error {
	product, ok := evt.Payload.(catalog.Product)
	if !ok {
		return unexpectedPayload(evt)
	}

	p.validation.Cancel()
	p.views.Preview.Render(product)
	p.refreshPreviewButton(product)
	p.views.Modal.Open(p.views.Preview)
	p.setState(StatePreviewing)
	return nil
}

func (p *Presenter) refreshPreviewButton(product catalog.Product) {
	switch {
	case !product.IsForSale():
		p.views.Preview.SetButton(LabelUnavailable, true)
	case p.cart.IsInCart(product.ID):
		p.views.Preview.SetButton(LabelRemoveFromCart, false)
	default:
		p.views.Preview.SetButton(LabelAddToCart, false)
	}
}

// togglePreview adds or removes the previewed product and closes the modal
func (p *Presenter) togglePreview(ctx context.Context) error {
	if p.State() != StatePreviewing {
		return shared.ErrInvalidState
	}
	product, ok := p.catalog.CurrentProduct()
	if !ok {
		return shared.ErrNotFound
	}
	if !product.IsForSale() {
		return shared.ErrNotForSale
	}

	if p.cart.IsInCart(product.ID) {
		p.cart.RemoveItem(ctx, product)
	} else {
		p.cart.AddItem(ctx, product)
	}
	p.closeModal()
	return nil
}

func (p *Presenter) onCartChanged(_ context.Context, _ shared.Event) error {
	p.views.Header.SetCounter(p.cart.TotalCount())

	items := p.cart.Items()
	cards := make([]Card, 0, len(items))
	for i, product := range items {
		cards = append(cards, p.views.Cards.BasketCard(product, i+1, p.removeFromBasket(product)))
	}
	p.views.Basket.SetItems(cards)
	p.views.Basket.SetTotal(p.cart.TotalPrice())
	p.views.Basket.SetSubmitDisabled(len(items) == 0)
	return nil
}

func (p *Presenter) removeFromBasket(product catalog.Product) Action {
	return func(ctx context.Context) error {
		if p.State() != StateBasketOpen {
			return shared.ErrInvalidState
		}
		if !p.cart.IsInCart(product.ID) {
			return shared.ErrNotFound
		}
		p.cart.RemoveItem(ctx, product)
		return nil
	}
}

func (p *Presenter) onBasketOpen(_ context.Context, _ shared.Event) error {
	p.validation.Cancel()
	p.catalog.ClearCurrentProduct()
	p.views.Basket.SetSubmitDisabled(p.cart.TotalCount() == 0)
	p.views.Modal.Open(p.views.Basket)
	p.setState(StateBasketOpen)
	return nil
}

func (p *Presenter) onOrderOpen(_ context.Context, _ shared.Event) error {
	p.openForm(p.views.OrderForm, StateOrderForm)
	return nil
}

func (p *Presenter) onContactsOpen(_ context.Context, _ shared.Event) error {
	if p.failure != "" {
		p.openForm(p.views.ContactsForm, StateSubmitFailed)
		p.views.ContactsForm.SetFormError(p.failure)
		return nil
	}
	p.openForm(p.views.ContactsForm, StateContactsForm)
	return nil
}

func (p *Presenter) openForm(form BuyerForm, state CheckoutState) {
	p.validation.Cancel()
	form.ApplyBuyerFields(p.customer.Data())
	form.SetFormError("")
	p.setState(state)
	p.applyValidation(form)
	p.views.Modal.Open(form)
}

func (p *Presenter) onBuyerChange(ctx context.Context, evt shared.Event) error {
	change, ok := evt.Payload.(customer.FieldChange)
	if !ok {
		return unexpectedPayload(evt)
	}
	if _, known := customer.ParseField(string(change.Field)); !known {
		return fmt.Errorf("%w: unknown buyer field %q", shared.ErrInvalidInput, change.Field)
	}
	p.customer.SaveData(ctx, customer.PatchField(change.Field, change.Value))
	return nil
}

func (p *Presenter) onOrderUpdate(_ context.Context, _ shared.Event) error {
	if !p.State().IsFormStep() {
		return nil
	}
	p.validation.Trigger(func(context.Context) {
		if form := p.activeForm(); form != nil {
			p.applyValidation(form)
		}
	})
	return nil
}

func (p *Presenter) activeForm() BuyerForm {
	switch s := p.State(); {
	case s == StateOrderForm:
		return p.views.OrderForm
	case s.IsContactsStep():
		return p.views.ContactsForm
	default:
		return nil
	}
}

// formResult validates the buyer record restricted to the form's fields
func (p *Presenter) formResult(form BuyerForm) customer.ValidationResult {
	return p.customer.ValidateFull(p.customer.Data()).Only(form.Fields()...)
}

// applyValidation shows the form's errors. The contacts submit stays
// disabled while an order call is running.
func (p *Presenter) applyValidation(form BuyerForm) {
	result := p.formResult(form)
	form.SetErrors(result.Errors)
	form.SetSubmitDisabled(!result.Valid || (p.submitting && form == p.views.ContactsForm))
}

func (p *Presenter) onOrderSubmit(ctx context.Context, _ shared.Event) error {
	p.validation.Cancel()

	req := order.NewRequest(p.customer.Data(), p.cart.ItemIDs(), p.cart.TotalPrice())
	if err := req.Validate(); err != nil {
		return err
	}

	p.submitting = true
	p.failure = ""
	p.setState(StateSubmitting)
	p.views.ContactsForm.SetFormError("")
	p.views.ContactsForm.SetSubmitDisabled(true)

	// the submission outlives the interaction that started it
	callCtx := context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		result, err := p.submit(callCtx, req)
		p.post(func(context.Context) {
			p.onOrderResult(callCtx, req, result, err)
		})
	}()
	return nil
}

func (p *Presenter) submit(ctx context.Context, req order.Request) (order.Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "storefront.submit_order",
		telemetry.WithAttribute(telemetry.SpanAttrItemCount, len(req.Items)),
		telemetry.WithAttribute(telemetry.SpanAttrOrderTotal, req.Total.String()),
	)
	defer span.End()

	result, err := p.gateway.SubmitOrder(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return order.Result{}, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, result.ID)
	return result, nil
}

func (p *Presenter) onOrderResult(ctx context.Context, req order.Request, result order.Result, err error) {
	log := p.log(ctx)
	p.submitting = false
	inFlow := p.State() == StateSubmitting

	if err != nil {
		log.Error("Order submission failed",
			zap.Int("items", len(req.Items)),
			zap.String("total", req.Total.String()),
			zap.Error(err),
		)
		p.recordOrder(ctx, telemetry.ResultFailure, req.Total)
		message := failureMessage(err)
		if !inFlow && !p.State().IsContactsStep() {
			// shown when the contacts step is opened again
			p.failure = message
			return
		}
		p.validation.Cancel()
		p.setState(StateSubmitFailed)
		p.applyValidation(p.views.ContactsForm)
		p.views.ContactsForm.SetFormError(message)
		return
	}

	log.Info("Order submitted",
		zap.String("order_id", result.ID),
		zap.String("total", result.Total.String()),
	)
	p.recordOrder(ctx, telemetry.ResultSuccess, result.Total)

	p.cart.Clear(ctx)
	p.customer.ClearData(ctx)

	if inFlow || p.State().IsFormStep() {
		p.validation.Cancel()
		p.views.Success.SetTotal(result.Total)
		p.views.Modal.Open(p.views.Success)
		p.setState(StateSuccess)
	}
}

func (p *Presenter) recordOrder(ctx context.Context, result string, total decimal.Decimal) {
	if p.metrics == nil {
		return
	}
	p.metrics.RecordOrder(ctx, result, total.InexactFloat64())
}

func (p *Presenter) onModalClose(_ context.Context, _ shared.Event) error {
	p.closeModal()
	return nil
}

// closeModal returns to the gallery. An order in flight still completes.
func (p *Presenter) closeModal() {
	p.validation.Cancel()
	p.catalog.ClearCurrentProduct()
	p.views.Modal.Close()
	if p.loaded {
		p.setState(StateBrowsing)
	} else {
		p.setState(StateIdle)
	}
}

func (p *Presenter) setState(s CheckoutState) {
	p.state.Store(int32(s))
}

func (p *Presenter) post(task scheduler.Task) {
	if !p.loop.Post(task) {
		p.logger.Warn("Dropping completion, session loop stopped")
	}
}

func (p *Presenter) log(ctx context.Context) *logger.ContextLogger {
	return logger.WithLogger(ctx, p.logger).With(zap.Stringer("state", p.State()))
}

func failureMessage(err error) string {
	if apiErr, ok := api.IsAPIError(err); ok && apiErr.Message != "" {
		return MessageOrderFailed + ": " + apiErr.Message
	}
	return MessageOrderFailed
}

func unexpectedPayload(evt shared.Event) error {
	return fmt.Errorf("%w: unexpected %s payload %T", shared.ErrInvalidInput, evt.Name, evt.Payload)
}
