package customer

import (
	"context"

	"github.com/Dradcheenko/weblarek/internal/domain/shared"
)

// Customer holds the buyer record of the current session
type Customer struct {
	events shared.EventPublisher
	data   Buyer
}

// NewCustomer creates a customer with every field unset
func NewCustomer(events shared.EventPublisher) *Customer {
	return &Customer{events: events}
}

// SaveData merges the present fields of the patch. If at least one field
// changed, order:update is emitted with the full record.
func (c *Customer) SaveData(ctx context.Context, patch BuyerPatch) bool {
	if !patch.ApplyTo(&c.data) {
		return false
	}
	c.events.Emit(ctx, shared.EventOrderUpdate, c.Data())
	return true
}

// Data returns a copy of the buyer record
func (c *Customer) Data() Buyer {
	return c.data
}

// ClearData unsets every field and emits order:update once
func (c *Customer) ClearData(ctx context.Context) {
	c.data = Buyer{}
	c.events.Emit(ctx, shared.EventOrderUpdate, c.Data())
}

// Validate checks the fields present in the record. It never reads the
// stored data.
func (c *Customer) Validate(record BuyerPatch) ValidationResult {
	return Validate(record)
}

// ValidateFull checks all four fields of the record
func (c *Customer) ValidateFull(record Buyer) ValidationResult {
	return ValidateFull(record)
}
