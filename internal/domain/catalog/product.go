package catalog

import (
	"github.com/shopspring/decimal"
)

// Product is a storefront item as delivered by the product feed.
// Products are immutable once loaded.
type Product struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Category    string           `json:"category"`
	Price       *decimal.Decimal `json:"price"` // nil means the product is not for sale
}

// ProductList is the product feed envelope
type ProductList struct {
	Total int       `json:"total"`
	Items []Product `json:"items"`
}

// IsForSale reports whether the product has a price
func (p Product) IsForSale() bool {
	return p.Price != nil
}

// PriceOrZero returns the price, or zero for products that are not for sale
func (p Product) PriceOrZero() decimal.Decimal {
	if p.Price == nil {
		return decimal.Zero
	}
	return *p.Price
}

// NewPrice is a helper for building priced products
func NewPrice(amount int64) *decimal.Decimal {
	d := decimal.NewFromInt(amount)
	return &d
}
