// Package headless renders the storefront into plain data structures.
//
// Each view implements a presenter port and stands in for the DOM component
// of a browser storefront: it keeps what would be on screen and turns user
// interactions into the same bus events and control callbacks.
package headless

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/Dradcheenko/weblarek/internal/application/storefront"
	"github.com/Dradcheenko/weblarek/internal/domain/catalog"
	"github.com/Dradcheenko/weblarek/internal/domain/customer"
	"github.com/Dradcheenko/weblarek/internal/domain/shared"
)

// ModalView holds the content currently shown in the modal
type ModalView struct {
	events  shared.EventPublisher
	content storefront.Content
}

// NewModalView creates a closed modal
func NewModalView(events shared.EventPublisher) *ModalView {
	return &ModalView{events: events}
}

// Open replaces the modal content
func (v *ModalView) Open(content storefront.Content) {
	v.content = content
}

// Close empties the modal
func (v *ModalView) Close() {
	v.content = nil
}

// IsOpen reports whether the modal shows anything
func (v *ModalView) IsOpen() bool {
	return v.content != nil
}

// Content returns the displayed content
func (v *ModalView) Content() storefront.Content {
	return v.content
}

// ClickClose is the close button or a click on the backdrop
func (v *ModalView) ClickClose(ctx context.Context) {
	v.events.Emit(ctx, shared.EventModalClose, nil)
}

// HeaderView is the basket button in the page header
type HeaderView struct {
	events  shared.EventPublisher
	counter int
}

// NewHeaderView creates a header with an empty counter
func NewHeaderView(events shared.EventPublisher) *HeaderView {
	return &HeaderView{events: events}
}

// SetCounter updates the basket counter
func (v *HeaderView) SetCounter(count int) {
	v.counter = count
}

// Click opens the basket
func (v *HeaderView) Click(ctx context.Context) {
	v.events.Emit(ctx, shared.EventBasketOpen, nil)
}

// CardView is a product card in the gallery or the basket
type CardView struct {
	ID       string
	Title    string
	Category string
	Image    string
	Price    string
	Index    int

	action storefront.Action
}

// ProductID implements storefront.Card
func (c *CardView) ProductID() string {
	return c.ID
}

// Click runs the card's control callback
func (c *CardView) Click(ctx context.Context) error {
	if c.action == nil {
		return shared.ErrInvalidState
	}
	return c.action(ctx)
}

// CardFactory renders catalog and basket cards
type CardFactory struct {
	cdnURL string
	prices *PriceFormatter
}

// NewCardFactory creates a factory resolving images against cdnURL
func NewCardFactory(cdnURL string, prices *PriceFormatter) *CardFactory {
	return &CardFactory{cdnURL: cdnURL, prices: prices}
}

// CatalogCard renders a gallery card
func (f *CardFactory) CatalogCard(product catalog.Product, onSelect storefront.Action) storefront.Card {
	return &CardView{
		ID:       product.ID,
		Title:    product.Title,
		Category: product.Category,
		Image:    ResolveImage(f.cdnURL, product.Image),
		Price:    f.prices.Price(product.Price),
		action:   onSelect,
	}
}

// BasketCard renders a numbered basket row
func (f *CardFactory) BasketCard(product catalog.Product, index int, onDelete storefront.Action) storefront.Card {
	return &CardView{
		ID:     product.ID,
		Title:  product.Title,
		Price:  f.prices.Price(product.Price),
		Index:  index,
		action: onDelete,
	}
}

func findCard(cards []storefront.Card, id string) (*CardView, bool) {
	for _, c := range cards {
		if card, ok := c.(*CardView); ok && card.ID == id {
			return card, true
		}
	}
	return nil, false
}

// GalleryView lists the catalog cards
type GalleryView struct {
	cards []storefront.Card
}

// NewGalleryView creates an empty gallery
func NewGalleryView() *GalleryView {
	return &GalleryView{}
}

// SetCards replaces the gallery content
func (v *GalleryView) SetCards(cards []storefront.Card) {
	v.cards = cards
}

// Click selects the card of a product
func (v *GalleryView) Click(ctx context.Context, productID string) error {
	card, ok := findCard(v.cards, productID)
	if !ok {
		return shared.ErrNotFound
	}
	return card.Click(ctx)
}

// PreviewView shows one product in full
type PreviewView struct {
	cdnURL string
	prices *PriceFormatter

	product  catalog.Product
	label    string
	disabled bool
	toggle   storefront.Action
}

// NewPreviewView creates an empty preview
func NewPreviewView(cdnURL string, prices *PriceFormatter) *PreviewView {
	return &PreviewView{cdnURL: cdnURL, prices: prices}
}

// ContentKind implements storefront.Content
func (v *PreviewView) ContentKind() storefront.ContentKind {
	return storefront.ContentPreview
}

// Render shows product
func (v *PreviewView) Render(product catalog.Product) {
	v.product = product
}

// SetButton sets the buy button state
func (v *PreviewView) SetButton(label string, disabled bool) {
	v.label = label
	v.disabled = disabled
}

// OnToggle registers the buy button callback
func (v *PreviewView) OnToggle(action storefront.Action) {
	v.toggle = action
}

// ClickButton presses the buy button
func (v *PreviewView) ClickButton(ctx context.Context) error {
	if v.disabled {
		return shared.ErrNotForSale
	}
	if v.toggle == nil {
		return shared.ErrInvalidState
	}
	return v.toggle(ctx)
}

// BasketView lists the cart contents
type BasketView struct {
	events   shared.EventPublisher
	prices   *PriceFormatter
	items    []storefront.Card
	total    decimal.Decimal
	disabled bool
}

// NewBasketView creates an empty basket
func NewBasketView(events shared.EventPublisher, prices *PriceFormatter) *BasketView {
	return &BasketView{events: events, prices: prices, disabled: true}
}

// ContentKind implements storefront.Content
func (v *BasketView) ContentKind() storefront.ContentKind {
	return storefront.ContentBasket
}

// SetItems replaces the basket rows
func (v *BasketView) SetItems(cards []storefront.Card) {
	v.items = cards
}

// SetTotal sets the basket sum
func (v *BasketView) SetTotal(total decimal.Decimal) {
	v.total = total
}

// SetSubmitDisabled toggles the order button
func (v *BasketView) SetSubmitDisabled(disabled bool) {
	v.disabled = disabled
}

// ClickDelete presses the delete button of a row
func (v *BasketView) ClickDelete(ctx context.Context, productID string) error {
	card, ok := findCard(v.items, productID)
	if !ok {
		return shared.ErrNotFound
	}
	return card.Click(ctx)
}

// ClickSubmit presses the order button
func (v *BasketView) ClickSubmit(ctx context.Context) error {
	if v.disabled {
		return shared.ErrEmptyCart
	}
	v.events.Emit(ctx, shared.EventOrderOpen, nil)
	return nil
}

// FormView is one checkout step. The order step edits payment and address,
// the contacts step edits email and phone.
type FormView struct {
	events   shared.EventPublisher
	kind     storefront.ContentKind
	fields   []customer.Field
	submitTo shared.EventName

	values    map[customer.Field]string
	errors    map[customer.Field]string
	disabled  bool
	formError string
}

// NewOrderFormView creates the payment and address step
func NewOrderFormView(events shared.EventPublisher) *FormView {
	return newFormView(events, storefront.ContentOrder, shared.EventContactsOpen,
		customer.FieldPayment, customer.FieldAddress)
}

// NewContactsFormView creates the email and phone step
func NewContactsFormView(events shared.EventPublisher) *FormView {
	return newFormView(events, storefront.ContentContacts, shared.EventOrderSubmit,
		customer.FieldEmail, customer.FieldPhone)
}

func newFormView(events shared.EventPublisher, kind storefront.ContentKind, submitTo shared.EventName, fields ...customer.Field) *FormView {
	return &FormView{
		events:   events,
		kind:     kind,
		fields:   fields,
		submitTo: submitTo,
		values:   make(map[customer.Field]string, len(fields)),
		errors:   make(map[customer.Field]string),
		disabled: true,
	}
}

// ContentKind implements storefront.Content
func (v *FormView) ContentKind() storefront.ContentKind {
	return v.kind
}

// Fields returns the buyer fields edited by this step
func (v *FormView) Fields() []customer.Field {
	return slices.Clone(v.fields)
}

// Has reports whether the step edits field
func (v *FormView) Has(field customer.Field) bool {
	return slices.Contains(v.fields, field)
}

// ApplyBuyerFields copies this step's fields out of the buyer record
func (v *FormView) ApplyBuyerFields(buyer customer.Buyer) {
	for _, f := range v.fields {
		v.values[f] = buyer.Value(f)
	}
}

// SetErrors replaces the field errors
func (v *FormView) SetErrors(errors map[customer.Field]string) {
	v.errors = make(map[customer.Field]string, len(errors))
	for f, msg := range errors {
		v.errors[f] = msg
	}
}

// SetSubmitDisabled toggles the submit button
func (v *FormView) SetSubmitDisabled(disabled bool) {
	v.disabled = disabled
}

// SetFormError sets the error shown above the submit button
func (v *FormView) SetFormError(message string) {
	v.formError = message
}

// Input types value into a field, or picks a payment button
func (v *FormView) Input(ctx context.Context, field customer.Field, value string) error {
	if !v.Has(field) {
		return shared.ErrInvalidInput
	}
	v.values[field] = value
	v.events.Emit(ctx, shared.EventBuyerChange, customer.FieldChange{Field: field, Value: value})
	return nil
}

// ClickSubmit submits the step. The button state lags input by the
// validation delay, so the presenter makes the final call.
func (v *FormView) ClickSubmit(ctx context.Context) {
	v.events.Emit(ctx, v.submitTo, nil)
}

// SuccessView confirms an order
type SuccessView struct {
	total decimal.Decimal
}

// NewSuccessView creates an empty confirmation
func NewSuccessView() *SuccessView {
	return &SuccessView{}
}

// ContentKind implements storefront.Content
func (v *SuccessView) ContentKind() storefront.ContentKind {
	return storefront.ContentSuccess
}

// SetTotal sets the charged sum
func (v *SuccessView) SetTotal(total decimal.Decimal) {
	v.total = total
}
