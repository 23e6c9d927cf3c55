// Package cart holds the shopping basket model.
package cart

import (
	"context"

	"github.com/Dradcheenko/weblarek/internal/domain/catalog"
	"github.com/Dradcheenko/weblarek/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Cart is an ordered set of products keyed by product id.
// Whether a product may be added (price set) is decided by the caller.
type Cart struct {
	events shared.EventPublisher
	items  []catalog.Product
}

// NewCart creates an empty cart
func NewCart(events shared.EventPublisher) *Cart {
	return &Cart{events: events}
}

// AddItem appends the product and emits cart:changed.
// Adding a product that is already in the cart does nothing.
func (c *Cart) AddItem(ctx context.Context, product catalog.Product) {
	if c.IsInCart(product.ID) {
		return
	}
	c.items = append(c.items, product)
	c.emitChanged(ctx)
}

// RemoveItem removes the product by id and emits cart:changed.
// Removing a product that is not in the cart does nothing.
func (c *Cart) RemoveItem(ctx context.Context, product catalog.Product) {
	idx := c.indexOf(product.ID)
	if idx < 0 {
		return
	}
	items := make([]catalog.Product, 0, len(c.items)-1)
	items = append(items, c.items[:idx]...)
	items = append(items, c.items[idx+1:]...)
	c.items = items
	c.emitChanged(ctx)
}

// IsInCart reports whether a product with the id is in the cart
func (c *Cart) IsInCart(id string) bool {
	return c.indexOf(id) >= 0
}

// Items returns a copy of the cart contents in add order
func (c *Cart) Items() []catalog.Product {
	result := make([]catalog.Product, len(c.items))
	copy(result, c.items)
	return result
}

// ItemIDs returns the ids of the cart contents in add order
func (c *Cart) ItemIDs() []string {
	ids := make([]string, len(c.items))
	for i, item := range c.items {
		ids[i] = item.ID
	}
	return ids
}

// TotalPrice sums the prices of all priced items
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		if item.Price != nil {
			total = total.Add(*item.Price)
		}
	}
	return total
}

// TotalCount returns the number of items
func (c *Cart) TotalCount() int {
	return len(c.items)
}

// Clear empties the cart. cart:changed is emitted even when the cart was
// already empty.
func (c *Cart) Clear(ctx context.Context) {
	c.items = nil
	c.emitChanged(ctx)
}

func (c *Cart) indexOf(id string) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) emitChanged(ctx context.Context) {
	c.events.Emit(ctx, shared.EventCartChanged, c.Items())
}
