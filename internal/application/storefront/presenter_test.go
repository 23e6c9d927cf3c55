package storefront

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Dradcheenko/weblarek/internal/domain/cart"
	"github.com/Dradcheenko/weblarek/internal/domain/catalog"
	"github.com/Dradcheenko/weblarek/internal/domain/customer"
	"github.com/Dradcheenko/weblarek/internal/domain/order"
	"github.com/Dradcheenko/weblarek/internal/domain/shared"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/api"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/event"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/scheduler"
	"github.com/Dradcheenko/weblarek/internal/infrastructure/telemetry"
)

const testDelay = 20 * time.Millisecond

var (
	productCheap = catalog.Product{ID: "p1", Title: "+1 час в сутках", Category: "софт-скил", Price: catalog.NewPrice(750)}
	productDear  = catalog.Product{ID: "p2", Title: "Фреймворк куки судьбы", Category: "дополнительное", Price: catalog.NewPrice(2500)}
	productFree  = catalog.Product{ID: "p3", Title: "Мамка-таймер", Category: "другое"}
)

type harness struct {
	loop      *scheduler.Loop
	bus       *event.InMemoryEventBus
	catalog   *catalog.Catalog
	cart      *cart.Cart
	customer  *customer.Customer
	source    *fakeSource
	gateway   *fakeGateway
	metrics   *fakeOrderRecorder
	logs      *observer.ObservedLogs
	modal     *fakeModal
	header    *fakeHeader
	gallery   *fakeGallery
	preview   *fakePreview
	basket    *fakeBasket
	orderForm *fakeForm
	contacts  *fakeForm
	success   *fakeSuccess
	presenter *Presenter
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	loop := scheduler.NewLoop(log)
	go func() { _ = loop.Run(context.Background()) }()
	t.Cleanup(func() {
		loop.Stop()
		<-loop.Done()
	})

	bus := event.NewInMemoryEventBus(log)
	h := &harness{
		loop:      loop,
		bus:       bus,
		catalog:   catalog.NewCatalog(bus),
		cart:      cart.NewCart(bus),
		customer:  customer.NewCustomer(bus),
		source:    &fakeSource{list: catalog.ProductList{Total: 3, Items: []catalog.Product{productCheap, productDear, productFree}}},
		gateway:   &fakeGateway{result: order.Result{ID: "order-1", Total: decimal.NewFromInt(750)}},
		metrics:   &fakeOrderRecorder{},
		logs:      logs,
		modal:     &fakeModal{},
		header:    &fakeHeader{},
		gallery:   &fakeGallery{},
		preview:   &fakePreview{},
		basket:    &fakeBasket{},
		orderForm: newOrderForm(),
		contacts:  newContactsForm(),
		success:   &fakeSuccess{},
	}

	p, err := New(h.deps(log), Options{ValidationDelay: testDelay})
	require.NoError(t, err)
	h.presenter = p
	t.Cleanup(p.Close)
	return h
}

func (h *harness) deps(log *zap.Logger) Deps {
	return Deps{
		Bus:      h.bus,
		Loop:     h.loop,
		Catalog:  h.catalog,
		Cart:     h.cart,
		Customer: h.customer,
		Source:   h.source,
		Gateway:  h.gateway,
		Logger:   log,
		Metrics:  h.metrics,
		Views: Views{
			Modal:        h.modal,
			Header:       h.header,
			Gallery:      h.gallery,
			Cards:        fakeCards{},
			Preview:      h.preview,
			Basket:       h.basket,
			OrderForm:    h.orderForm,
			ContactsForm: h.contacts,
			Success:      h.success,
		},
	}
}

// do runs fn on the session loop and waits for it
func (h *harness) do(t *testing.T, fn func(ctx context.Context)) {
	t.Helper()
	require.NoError(t, h.loop.Do(context.Background(), fn))
}

func (h *harness) emit(t *testing.T, name shared.EventName, payload any) {
	t.Helper()
	h.do(t, func(ctx context.Context) {
		h.bus.Emit(ctx, name, payload)
	})
}

func (h *harness) run(t *testing.T, action func() Action) error {
	t.Helper()
	var err error
	h.do(t, func(ctx context.Context) {
		err = action()(ctx)
	})
	return err
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	require.NoError(t, h.presenter.Start(context.Background()))
	h.waitState(t, StateBrowsing)
}

func (h *harness) waitState(t *testing.T, want CheckoutState) {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.presenter.State() == want
	}, time.Second, 5*time.Millisecond, "state never became %s, last %s", want, h.presenter.State())
}

func (h *harness) cardAction(id string) func() Action {
	return func() Action {
		for _, c := range h.gallery.cards {
			if c.ProductID() == id {
				return c.(*fakeCard).action
			}
		}
		return func(context.Context) error { return shared.ErrNotFound }
	}
}

func (h *harness) toggle() Action {
	return h.preview.toggle
}

func (h *harness) addToCart(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, h.run(t, h.cardAction(id)))
	require.NoError(t, h.run(t, h.toggle))
}

func (h *harness) change(t *testing.T, field customer.Field, value string) {
	t.Helper()
	h.emit(t, shared.EventBuyerChange, customer.FieldChange{Field: field, Value: value})
}

// toContacts fills the order step and opens the contacts form
func (h *harness) toContacts(t *testing.T) {
	t.Helper()
	h.emit(t, shared.EventBasketOpen, nil)
	h.emit(t, shared.EventOrderOpen, nil)
	h.change(t, customer.FieldPayment, "card")
	h.change(t, customer.FieldAddress, "Ростов-на-Дону")
	h.emit(t, shared.EventContactsOpen, nil)
	require.Equal(t, StateContactsForm, h.presenter.State())
}

func (h *harness) fillContacts(t *testing.T) {
	t.Helper()
	h.change(t, customer.FieldEmail, "test@mail.ru")
	h.change(t, customer.FieldPhone, "+7 (928) 928-98-28")
}

func TestNew_MissingCollaborator(t *testing.T) {
	h := newHarness(t)

	deps := h.deps(zap.NewNop())
	deps.Views.ContactsForm = nil
	_, err := New(deps, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrMissingCollaborator)
	assert.Contains(t, err.Error(), "contacts form")

	deps = h.deps(zap.NewNop())
	deps.Gateway = nil
	_, err = New(deps, Options{})
	assert.ErrorIs(t, err, shared.ErrMissingCollaborator)
}

func TestPresenter_StartRendersGallery(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.do(t, func(context.Context) {
		require.Len(t, h.gallery.cards, 3)
		assert.Equal(t, "p1", h.gallery.cards[0].ProductID())
		assert.Equal(t, "p3", h.gallery.cards[2].ProductID())
		assert.False(t, h.modal.open)
	})

	assert.ErrorIs(t, h.presenter.Start(context.Background()), ErrAlreadyStarted)
}

func TestPresenter_StartFailureStaysIdle(t *testing.T) {
	h := newHarness(t)
	h.source.err = errors.New("connection refused")

	require.NoError(t, h.presenter.Start(context.Background()))
	require.Eventually(t, func() bool {
		return h.logs.FilterMessage("Failed to load catalog").Len() == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, StateIdle, h.presenter.State())
	assert.Equal(t, 1, h.logs.FilterMessage("Failed to load catalog").FilterLevelExact(zapcore.WarnLevel).Len())
	h.do(t, func(context.Context) {
		assert.Empty(t, h.gallery.cards)
	})

	// the basket still works without a catalog and closing returns to idle
	h.emit(t, shared.EventBasketOpen, nil)
	assert.Equal(t, StateBasketOpen, h.presenter.State())
	h.emit(t, shared.EventModalClose, nil)
	assert.Equal(t, StateIdle, h.presenter.State())
}

func TestPresenter_PreviewButton(t *testing.T) {
	tests := []struct {
		name      string
		product   string
		inCart    bool
		wantLabel string
		disabled  bool
	}{
		{name: "for sale", product: "p1", wantLabel: LabelAddToCart},
		{name: "already in cart", product: "p1", inCart: true, wantLabel: LabelRemoveFromCart},
		{name: "not for sale", product: "p3", wantLabel: LabelUnavailable, disabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.start(t)
			if tt.inCart {
				h.addToCart(t, tt.product)
			}

			require.NoError(t, h.run(t, h.cardAction(tt.product)))

			assert.Equal(t, StatePreviewing, h.presenter.State())
			h.do(t, func(context.Context) {
				assert.Equal(t, tt.product, h.preview.product.ID)
				assert.Equal(t, tt.wantLabel, h.preview.label)
				assert.Equal(t, tt.disabled, h.preview.disabled)
				assert.Equal(t, ContentPreview, h.modal.kind())
			})
		})
	}
}

func TestPresenter_TogglePreview(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.addToCart(t, "p1")

	assert.Equal(t, StateBrowsing, h.presenter.State())
	h.do(t, func(context.Context) {
		assert.False(t, h.modal.open)
		assert.Equal(t, 1, h.header.count)
		assert.True(t, h.cart.IsInCart("p1"))
		_, selected := h.catalog.CurrentProduct()
		assert.False(t, selected)
	})

	// second toggle removes the product again
	h.addToCart(t, "p1")
	h.do(t, func(context.Context) {
		assert.False(t, h.cart.IsInCart("p1"))
		assert.Equal(t, 0, h.header.count)
	})
}

func TestPresenter_TogglePreviewRejections(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	assert.ErrorIs(t, h.run(t, h.toggle), shared.ErrInvalidState)

	require.NoError(t, h.run(t, h.cardAction("p3")))
	assert.ErrorIs(t, h.run(t, h.toggle), shared.ErrNotForSale)
	assert.Equal(t, StatePreviewing, h.presenter.State())
	h.do(t, func(context.Context) {
		assert.Zero(t, h.cart.TotalCount())
	})
}

func TestPresenter_SelectProductOnlyFromGallery(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.emit(t, shared.EventBasketOpen, nil)
	assert.ErrorIs(t, h.run(t, h.cardAction("p1")), shared.ErrInvalidState)
	assert.Equal(t, StateBasketOpen, h.presenter.State())
}

func TestPresenter_Basket(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.emit(t, shared.EventBasketOpen, nil)
	assert.Equal(t, StateBasketOpen, h.presenter.State())
	h.do(t, func(context.Context) {
		assert.Equal(t, ContentBasket, h.modal.kind())
		assert.True(t, h.basket.disabled)
	})

	// an empty basket cannot proceed to the order form
	h.emit(t, shared.EventOrderOpen, nil)
	assert.Equal(t, StateBasketOpen, h.presenter.State())

	h.emit(t, shared.EventModalClose, nil)
	h.addToCart(t, "p1")
	h.addToCart(t, "p2")
	h.emit(t, shared.EventBasketOpen, nil)

	h.do(t, func(context.Context) {
		require.Len(t, h.basket.items, 2)
		assert.Equal(t, 1, h.basket.items[0].(*fakeCard).index)
		assert.Equal(t, 2, h.basket.items[1].(*fakeCard).index)
		assert.True(t, h.basket.total.Equal(decimal.NewFromInt(3250)))
		assert.False(t, h.basket.disabled)
	})

	// delete the first row
	require.NoError(t, h.run(t, func() Action { return h.basket.items[0].(*fakeCard).action }))
	h.do(t, func(context.Context) {
		require.Len(t, h.basket.items, 1)
		assert.Equal(t, "p2", h.basket.items[0].ProductID())
		assert.Equal(t, 1, h.basket.items[0].(*fakeCard).index)
		assert.True(t, h.basket.total.Equal(decimal.NewFromInt(2500)))
		assert.Equal(t, 1, h.header.count)
	})
	assert.Equal(t, StateBasketOpen, h.presenter.State())
}

func TestPresenter_OrderFormValidation(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	h.addToCart(t, "p1")

	h.emit(t, shared.EventBasketOpen, nil)
	h.emit(t, shared.EventOrderOpen, nil)

	assert.Equal(t, StateOrderForm, h.presenter.State())
	h.do(t, func(context.Context) {
		assert.Equal(t, ContentOrder, h.modal.kind())
		assert.Equal(t, customer.MessagePayment, h.orderForm.errors[customer.FieldPayment])
		assert.Equal(t, customer.MessageAddress, h.orderForm.errors[customer.FieldAddress])
		assert.NotContains(t, h.orderForm.errors, customer.FieldEmail)
		assert.True(t, h.orderForm.disabled)
	})

	// proceeding is refused while the step is invalid
	h.emit(t, shared.EventContactsOpen, nil)
	assert.Equal(t, StateOrderForm, h.presenter.State())

	h.do(t, func(ctx context.Context) {
		h.bus.Emit(ctx, shared.EventBuyerChange, customer.FieldChange{Field: customer.FieldPayment, Value: "card"})
		h.bus.Emit(ctx, shared.EventBuyerChange, customer.FieldChange{Field: customer.FieldAddress, Value: "Ростов-на-Дону"})
		// never re-validated synchronously on input
		assert.True(t, h.orderForm.disabled)
		assert.Equal(t, 1, h.orderForm.validations)
	})

	require.Eventually(t, func() bool {
		var enabled bool
		h.do(t, func(context.Context) { enabled = !h.orderForm.disabled })
		return enabled
	}, time.Second, 5*time.Millisecond)

	h.do(t, func(context.Context) {
		assert.Empty(t, h.orderForm.errors)
		assert.Equal(t, 2, h.orderForm.validations)
	})
}

func TestPresenter_DebounceKeepsLatestInput(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	h.addToCart(t, "p1")
	h.emit(t, shared.EventBasketOpen, nil)
	h.emit(t, shared.EventOrderOpen, nil)

	for _, address := range []string{"Р", "Ро", "Рос", "Ростов"} {
		h.change(t, customer.FieldAddress, address)
	}

	require.Eventually(t, func() bool {
		var n int
		h.do(t, func(context.Context) { n = h.orderForm.validations })
		return n == 2
	}, time.Second, 5*time.Millisecond)

	time.Sleep(3 * testDelay)
	h.do(t, func(context.Context) {
		assert.Equal(t, 2, h.orderForm.validations)
		assert.NotContains(t, h.orderForm.errors, customer.FieldAddress)
		assert.Contains(t, h.orderForm.errors, customer.FieldPayment)
	})
}

func TestPresenter_ModalCloseCancelsValidation(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	h.addToCart(t, "p1")
	h.emit(t, shared.EventBasketOpen, nil)
	h.emit(t, shared.EventOrderOpen, nil)

	h.do(t, func(ctx context.Context) {
		h.bus.Emit(ctx, shared.EventBuyerChange, customer.FieldChange{Field: customer.FieldAddress, Value: "Ростов-на-Дону"})
		h.bus.Emit(ctx, shared.EventModalClose, nil)
	})

	time.Sleep(3 * testDelay)
	assert.Equal(t, StateBrowsing, h.presenter.State())
	h.do(t, func(context.Context) {
		assert.Equal(t, 1, h.orderForm.validations)
		assert.False(t, h.modal.open)
		// the model keeps the input
		assert.Equal(t, "Ростов-на-Дону", h.customer.Data().Address)
	})
}

func TestPresenter_FormsArePrefilled(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	h.addToCart(t, "p1")
	h.toContacts(t)
	h.fillContacts(t)

	h.emit(t, shared.EventModalClose, nil)
	h.emit(t, shared.EventBasketOpen, nil)
	h.emit(t, shared.EventOrderOpen, nil)

	h.do(t, func(context.Context) {
		assert.Equal(t, customer.PaymentCard, h.orderForm.applied.Payment)
		assert.Equal(t, "Ростов-на-Дону", h.orderForm.applied.Address)
		assert.Empty(t, h.orderForm.errors)
		assert.False(t, h.orderForm.disabled)
	})

	h.emit(t, shared.EventContactsOpen, nil)
	h.do(t, func(context.Context) {
		assert.Equal(t, "test@mail.ru", h.contacts.applied.Email)
		assert.Equal(t, "+7 (928) 928-98-28", h.contacts.applied.Phone)
		assert.Empty(t, h.contacts.errors)
		assert.False(t, h.contacts.disabled)
	})
}

func TestPresenter_ContactsStepValidation(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	h.addToCart(t, "p1")
	h.toContacts(t)

	h.do(t, func(context.Context) {
		assert.Equal(t, ContentContacts, h.modal.kind())
		assert.Equal(t, customer.MessageEmail, h.contacts.errors[customer.FieldEmail])
		assert.Equal(t, customer.MessagePhone, h.contacts.errors[customer.FieldPhone])
		assert.NotContains(t, h.contacts.errors, customer.FieldPayment)
		assert.True(t, h.contacts.disabled)
	})

	h.change(t, customer.FieldEmail, "test@mail")
	h.change(t, customer.FieldPhone, "+7 (928) 928-98-28")
	h.emit(t, shared.EventOrderSubmit, nil)

	assert.Equal(t, StateContactsForm, h.presenter.State())
	assert.Zero(t, h.gateway.calls())

	require.Eventually(t, func() bool {
		var errs map[customer.Field]string
		h.do(t, func(context.Context) { errs = h.contacts.errors })
		_, phoneErr := errs[customer.FieldPhone]
		return !phoneErr
	}, time.Second, 5*time.Millisecond)
	h.do(t, func(context.Context) {
		assert.Equal(t, customer.MessageEmail, h.contacts.errors[customer.FieldEmail])
	})
}

func TestPresenter_SubmitSuccess(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	h.addToCart(t, "p1")
	h.toContacts(t)
	h.fillContacts(t)

	h.emit(t, shared.EventOrderSubmit, nil)
	h.waitState(t, StateSuccess)

	req := h.gateway.lastRequest()
	assert.Equal(t, []string{"p1"}, req.Items)
	assert.True(t, req.Total.Equal(decimal.NewFromInt(750)))
	assert.Equal(t, customer.PaymentCard, req.Payment)
	assert.Equal(t, "test@mail.ru", req.Email)

	h.do(t, func(context.Context) {
		assert.Equal(t, ContentSuccess, h.modal.kind())
		assert.True(t, h.success.total.Equal(decimal.NewFromInt(750)))
		assert.Zero(t, h.cart.TotalCount())
		assert.True(t, h.customer.Data().IsEmpty())
		assert.Equal(t, 0, h.header.count)
	})

	assert.Equal(t, []string{telemetry.ResultSuccess}, h.metrics.recorded())
	entries := h.logs.FilterMessage("Order submitted").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "order-1", entries[0].ContextMap()["order_id"])

	h.emit(t, shared.EventModalClose, nil)
	assert.Equal(t, StateBrowsing, h.presenter.State())
}

func TestPresenter_SubmitFailureKeepsModels(t *testing.T) {
	h := newHarness(t)
	h.gateway.err = &api.APIError{StatusCode: http.StatusBadRequest, Message: "Неверная сумма заказа"}
	h.start(t)
	h.addToCart(t, "p1")
	h.addToCart(t, "p2")
	h.toContacts(t)
	h.fillContacts(t)

	var before customer.Buyer
	h.do(t, func(context.Context) { before = h.customer.Data() })

	h.emit(t, shared.EventOrderSubmit, nil)
	h.waitState(t, StateSubmitFailed)

	h.do(t, func(context.Context) {
		assert.Equal(t, before, h.customer.Data())
		assert.Equal(t, []string{"p1", "p2"}, h.cart.ItemIDs())
		assert.Equal(t, ContentContacts, h.modal.kind())
		assert.Equal(t, MessageOrderFailed+": Неверная сумма заказа", h.contacts.formError)
		assert.False(t, h.contacts.disabled)
	})
	assert.Equal(t, []string{telemetry.ResultFailure}, h.metrics.recorded())
	assert.Equal(t, 1, h.logs.FilterMessage("Order submission failed").FilterLevelExact(zapcore.ErrorLevel).Len())

	// the failed step accepts another attempt
	h.gateway.mu.Lock()
	h.gateway.err = nil
	h.gateway.mu.Unlock()
	h.emit(t, shared.EventOrderSubmit, nil)
	h.waitState(t, StateSuccess)
	assert.Equal(t, 2, h.gateway.calls())
}

func TestPresenter_SubmitGuardsAgainstDoubleSubmission(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	h.gateway.release = release
	h.start(t)
	h.addToCart(t, "p1")
	h.toContacts(t)
	h.fillContacts(t)

	h.emit(t, shared.EventOrderSubmit, nil)
	assert.Equal(t, StateSubmitting, h.presenter.State())

	h.do(t, func(ctx context.Context) {
		assert.True(t, h.contacts.disabled)
		assert.ErrorIs(t, h.presenter.Allows(shared.EventOrderSubmit), shared.ErrSubmissionInFlight)
		h.bus.Emit(ctx, shared.EventOrderSubmit, nil)
	})

	close(release)
	h.waitState(t, StateSuccess)
	assert.Equal(t, 1, h.gateway.calls())
}

func TestPresenter_ModalClosedDuringSubmission(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	h.gateway.release = release
	h.start(t)
	h.addToCart(t, "p1")
	h.toContacts(t)
	h.fillContacts(t)

	h.emit(t, shared.EventOrderSubmit, nil)
	h.emit(t, shared.EventModalClose, nil)
	assert.Equal(t, StateBrowsing, h.presenter.State())
	close(release)

	require.Eventually(t, func() bool {
		var empty bool
		h.do(t, func(context.Context) { empty = h.cart.TotalCount() == 0 })
		return empty
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, StateBrowsing, h.presenter.State())
	h.do(t, func(context.Context) {
		assert.False(t, h.modal.open)
		assert.True(t, h.customer.Data().IsEmpty())
	})
}

func TestPresenter_ReopenedCheckoutCannotSubmitTwice(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	h.gateway.release = release
	h.start(t)
	h.addToCart(t, "p1")
	h.toContacts(t)
	h.fillContacts(t)

	h.emit(t, shared.EventOrderSubmit, nil)
	h.emit(t, shared.EventModalClose, nil)

	h.emit(t, shared.EventBasketOpen, nil)
	h.emit(t, shared.EventOrderOpen, nil)
	h.emit(t, shared.EventContactsOpen, nil)
	require.Equal(t, StateContactsForm, h.presenter.State())
	h.do(t, func(context.Context) {
		assert.True(t, h.contacts.disabled)
		assert.ErrorIs(t, h.presenter.Allows(shared.EventOrderSubmit), shared.ErrSubmissionInFlight)
	})

	h.emit(t, shared.EventOrderSubmit, nil)
	assert.Equal(t, StateContactsForm, h.presenter.State())
	assert.Equal(t, 1, h.gateway.calls())

	close(release)
	h.waitState(t, StateSuccess)
	assert.Equal(t, 1, h.gateway.calls())
	assert.Equal(t, []string{telemetry.ResultSuccess}, h.metrics.recorded())
	h.do(t, func(context.Context) {
		assert.Equal(t, ContentSuccess, h.modal.kind())
		assert.Zero(t, h.cart.TotalCount())
	})
}

func TestPresenter_FailureAfterModalClosedIsShownOnContacts(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	h.gateway.release = release
	h.gateway.err = &api.APIError{StatusCode: http.StatusBadRequest, Message: "Неверная сумма заказа"}
	h.start(t)
	h.addToCart(t, "p1")
	h.toContacts(t)
	h.fillContacts(t)

	h.emit(t, shared.EventOrderSubmit, nil)
	h.emit(t, shared.EventModalClose, nil)
	close(release)

	require.Eventually(t, func() bool {
		return len(h.metrics.recorded()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, StateBrowsing, h.presenter.State())

	h.emit(t, shared.EventBasketOpen, nil)
	h.emit(t, shared.EventOrderOpen, nil)
	h.do(t, func(context.Context) {
		assert.Empty(t, h.orderForm.formError)
	})

	h.emit(t, shared.EventContactsOpen, nil)
	assert.Equal(t, StateSubmitFailed, h.presenter.State())
	h.do(t, func(context.Context) {
		assert.Equal(t, MessageOrderFailed+": Неверная сумма заказа", h.contacts.formError)
		assert.False(t, h.contacts.disabled)
		assert.Equal(t, []string{"p1"}, h.cart.ItemIDs())
	})

	// a new attempt clears the message
	h.gateway.mu.Lock()
	h.gateway.err = nil
	h.gateway.release = nil
	h.gateway.mu.Unlock()
	h.emit(t, shared.EventOrderSubmit, nil)
	h.waitState(t, StateSuccess)
	h.emit(t, shared.EventModalClose, nil)
	assert.Equal(t, StateBrowsing, h.presenter.State())
}

func TestPresenter_FailureWhileContactsReopened(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	h.gateway.release = release
	h.gateway.err = errors.New("connection reset")
	h.start(t)
	h.addToCart(t, "p1")
	h.toContacts(t)
	h.fillContacts(t)

	h.emit(t, shared.EventOrderSubmit, nil)
	h.emit(t, shared.EventModalClose, nil)
	h.emit(t, shared.EventBasketOpen, nil)
	h.emit(t, shared.EventOrderOpen, nil)
	h.emit(t, shared.EventContactsOpen, nil)
	close(release)

	h.waitState(t, StateSubmitFailed)
	h.do(t, func(context.Context) {
		assert.Equal(t, MessageOrderFailed, h.contacts.formError)
		assert.False(t, h.contacts.disabled)
	})
}

func TestPresenter_BuyerChangeOutsideForms(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	h.change(t, customer.FieldEmail, "test@mail.ru")
	h.do(t, func(context.Context) {
		assert.Empty(t, h.customer.Data().Email)
	})
	assert.Equal(t, 1, h.logs.FilterMessage("Ignoring event").Len())
}

func TestPresenter_CloseUnsubscribes(t *testing.T) {
	h := newHarness(t)
	for _, name := range shared.AllEventNames() {
		assert.Equal(t, 1, h.bus.SubscriberCount(name), name.String())
	}

	h.presenter.Close()
	for _, name := range shared.AllEventNames() {
		assert.Zero(t, h.bus.SubscriberCount(name), name.String())
	}
}

func TestCheckoutState(t *testing.T) {
	assert.Equal(t, "contacts_form", StateContactsForm.String())
	assert.Equal(t, "unknown", CheckoutState(99).String())
	assert.False(t, StateBrowsing.HasModal())
	assert.True(t, StateSuccess.HasModal())
	assert.True(t, StateSubmitFailed.IsContactsStep())
	assert.True(t, StateOrderForm.IsFormStep())
	assert.False(t, StateSubmitting.IsFormStep())
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "server message", err: &api.APIError{StatusCode: http.StatusBadRequest, Message: "Не указан адрес"}, want: MessageOrderFailed + ": Не указан адрес"},
		{name: "empty body", err: &api.APIError{StatusCode: http.StatusBadGateway}, want: MessageOrderFailed},
		{name: "network", err: errors.New("connection reset"), want: MessageOrderFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failureMessage(tt.err))
		})
	}
}
