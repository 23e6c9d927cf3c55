package catalog

import (
	"context"

	"github.com/Dradcheenko/weblarek/internal/domain/shared"
)

// Catalog holds the loaded products and the product currently shown in the
// preview. The preview is tracked by id only.
type Catalog struct {
	events    shared.EventPublisher
	products  []Product
	index     map[string]int
	currentID string
}

// NewCatalog creates an empty catalog
func NewCatalog(events shared.EventPublisher) *Catalog {
	return &Catalog{
		events: events,
		index:  make(map[string]int),
	}
}

// SaveProducts replaces the product sequence and emits catalog:changed.
// A preview reference that no longer matches a product is cleared.
func (c *Catalog) SaveProducts(ctx context.Context, products []Product) {
	c.products = make([]Product, len(products))
	copy(c.products, products)

	c.index = make(map[string]int, len(products))
	for i, p := range c.products {
		// first occurrence wins for duplicated ids
		if _, exists := c.index[p.ID]; !exists {
			c.index[p.ID] = i
		}
	}

	if _, ok := c.index[c.currentID]; !ok {
		c.currentID = ""
	}

	c.events.Emit(ctx, shared.EventCatalogChanged, c.Products())
}

// Products returns a copy of the product sequence in feed order
func (c *Catalog) Products() []Product {
	result := make([]Product, len(c.products))
	copy(result, c.products)
	return result
}

// ProductByID looks up a product
func (c *Catalog) ProductByID(id string) (Product, bool) {
	i, ok := c.index[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// SetCurrentProduct selects the previewed product and emits
// catalog:product-selected with it. The product must be part of the catalog.
func (c *Catalog) SetCurrentProduct(ctx context.Context, product Product) error {
	stored, ok := c.ProductByID(product.ID)
	if !ok {
		return shared.ErrNotFound
	}
	c.currentID = stored.ID

	c.events.Emit(ctx, shared.EventProductSelected, stored)
	return nil
}

// CurrentProduct returns the previewed product, if any
func (c *Catalog) CurrentProduct() (Product, bool) {
	if c.currentID == "" {
		return Product{}, false
	}
	return c.ProductByID(c.currentID)
}

// ClearCurrentProduct drops the preview reference without emitting
func (c *Catalog) ClearCurrentProduct() {
	c.currentID = ""
}
