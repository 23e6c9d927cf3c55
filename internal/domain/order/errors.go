package order

import "github.com/Dradcheenko/weblarek/internal/domain/shared"

var (
	// ErrNoItems is returned for an order without items
	ErrNoItems = shared.NewDomainError("ORDER_NO_ITEMS", "Order has no items")
	// ErrInvalidBuyer is returned when the buyer record does not pass full validation
	ErrInvalidBuyer = shared.NewDomainError("ORDER_INVALID_BUYER", "Buyer data is incomplete or invalid")
)
