// Package order describes the order submitted to the remote store.
package order

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Dradcheenko/weblarek/internal/domain/customer"
)

// Request is the order body sent to the store
type Request struct {
	Payment customer.Payment
	Email   string
	Phone   string
	Address string
	Total   decimal.Decimal
	Items   []string
}

// Result is the store's answer to an accepted order
type Result struct {
	ID    string
	Total decimal.Decimal
}

// Gateway submits orders to the store
type Gateway interface {
	SubmitOrder(ctx context.Context, req Request) (Result, error)
}

// NewRequest assembles an order from the buyer record and the cart contents.
// The item ids are copied.
func NewRequest(buyer customer.Buyer, items []string, total decimal.Decimal) Request {
	ids := make([]string, len(items))
	copy(ids, items)
	return Request{
		Payment: buyer.Payment,
		Email:   buyer.Email,
		Phone:   buyer.Phone,
		Address: buyer.Address,
		Total:   total,
		Items:   ids,
	}
}

// Buyer returns the buyer part of the request
func (r Request) Buyer() customer.Buyer {
	return customer.Buyer{
		Payment: r.Payment,
		Email:   r.Email,
		Phone:   r.Phone,
		Address: r.Address,
	}
}

// Validate checks that the request carries a complete buyer and at least one item
func (r Request) Validate() error {
	if len(r.Items) == 0 {
		return ErrNoItems
	}
	if res := customer.ValidateFull(r.Buyer()); !res.Valid {
		return ErrInvalidBuyer
	}
	return nil
}
