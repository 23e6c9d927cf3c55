package storefront

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Dradcheenko/weblarek/internal/domain/catalog"
	"github.com/Dradcheenko/weblarek/internal/domain/customer"
)

// Action is a user interaction callback registered on a view control.
// Views invoke it on the session loop and hand the error back to the caller.
type Action func(ctx context.Context) error

// ContentKind identifies what the modal is showing
type ContentKind string

const (
	ContentPreview  ContentKind = "preview"
	ContentBasket   ContentKind = "basket"
	ContentOrder    ContentKind = "order"
	ContentContacts ContentKind = "contacts"
	ContentSuccess  ContentKind = "success"
)

// Content is anything the modal can display
type Content interface {
	ContentKind() ContentKind
}

// Card is a rendered product card
type Card interface {
	ProductID() string
}

// Modal shows one piece of content at a time
type Modal interface {
	Open(content Content)
	Close()
}

// HeaderCart is the basket counter in the page header
type HeaderCart interface {
	SetCounter(count int)
}

// Gallery lists the catalog cards
type Gallery interface {
	SetCards(cards []Card)
}

// CardFactory renders product cards
type CardFactory interface {
	CatalogCard(product catalog.Product, onSelect Action) Card
	BasketCard(product catalog.Product, index int, onDelete Action) Card
}

// Preview is the product detail shown in the modal
type Preview interface {
	Content
	Render(product catalog.Product)
	SetButton(label string, disabled bool)
	OnToggle(action Action)
}

// Basket is the cart listing shown in the modal
type Basket interface {
	Content
	SetItems(cards []Card)
	SetTotal(total decimal.Decimal)
	SetSubmitDisabled(disabled bool)
}

// BuyerForm is one step of the checkout form. Each form declares which
// buyer fields it edits and copies them out of the record itself.
type BuyerForm interface {
	Content
	Fields() []customer.Field
	ApplyBuyerFields(buyer customer.Buyer)
	SetErrors(errors map[customer.Field]string)
	SetSubmitDisabled(disabled bool)
	SetFormError(message string)
}

// Success confirms an accepted order
type Success interface {
	Content
	SetTotal(total decimal.Decimal)
}

// Views bundles the view collaborators of the presenter
type Views struct {
	Modal        Modal
	Header       HeaderCart
	Gallery      Gallery
	Cards        CardFactory
	Preview      Preview
	Basket       Basket
	OrderForm    BuyerForm
	ContactsForm BuyerForm
	Success      Success
}

// OrderRecorder counts order submissions
type OrderRecorder interface {
	RecordOrder(ctx context.Context, result string, total float64)
}
