// Package customer holds the buyer record, its model and validation rules.
package customer

// Payment is the chosen payment method
type Payment string

const (
	PaymentUnset Payment = ""
	PaymentCard  Payment = "card"
	PaymentCash  Payment = "cash"
)

// IsValid reports whether the payment is one of the accepted methods
func (p Payment) IsValid() bool {
	return p == PaymentCard || p == PaymentCash
}

// Field names a buyer field
type Field string

const (
	FieldPayment Field = "payment"
	FieldEmail   Field = "email"
	FieldPhone   Field = "phone"
	FieldAddress Field = "address"
)

// AllFields returns the buyer fields in form order
func AllFields() []Field {
	return []Field{FieldPayment, FieldAddress, FieldEmail, FieldPhone}
}

// ParseField converts a wire name into a Field
func ParseField(name string) (Field, bool) {
	switch f := Field(name); f {
	case FieldPayment, FieldEmail, FieldPhone, FieldAddress:
		return f, true
	default:
		return "", false
	}
}

// Buyer is the full buyer record. An empty value means the field is unset.
type Buyer struct {
	Payment Payment `json:"payment"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
}

// Value returns the raw value of a field
func (b Buyer) Value(f Field) string {
	switch f {
	case FieldPayment:
		return string(b.Payment)
	case FieldEmail:
		return b.Email
	case FieldPhone:
		return b.Phone
	case FieldAddress:
		return b.Address
	default:
		return ""
	}
}

// IsEmpty reports whether every field is unset
func (b Buyer) IsEmpty() bool {
	return b == Buyer{}
}

// Patch returns a partial record holding only the fields that are set
func (b Buyer) Patch() BuyerPatch {
	var p BuyerPatch
	if b.Payment != PaymentUnset {
		payment := b.Payment
		p.Payment = &payment
	}
	if b.Email != "" {
		p.Email = ptr(b.Email)
	}
	if b.Phone != "" {
		p.Phone = ptr(b.Phone)
	}
	if b.Address != "" {
		p.Address = ptr(b.Address)
	}
	return p
}

// BuyerPatch is a partial buyer record. Nil fields are absent; a pointer to
// an empty value explicitly clears the field.
type BuyerPatch struct {
	Payment *Payment `json:"payment,omitempty"`
	Email   *string  `json:"email,omitempty"`
	Phone   *string  `json:"phone,omitempty"`
	Address *string  `json:"address,omitempty"`
}

// PatchField builds a patch carrying a single field
func PatchField(f Field, value string) BuyerPatch {
	var p BuyerPatch
	switch f {
	case FieldPayment:
		payment := Payment(value)
		p.Payment = &payment
	case FieldEmail:
		p.Email = ptr(value)
	case FieldPhone:
		p.Phone = ptr(value)
	case FieldAddress:
		p.Address = ptr(value)
	}
	return p
}

// Fields returns the fields present in the patch
func (p BuyerPatch) Fields() []Field {
	fields := make([]Field, 0, 4)
	if p.Payment != nil {
		fields = append(fields, FieldPayment)
	}
	if p.Email != nil {
		fields = append(fields, FieldEmail)
	}
	if p.Phone != nil {
		fields = append(fields, FieldPhone)
	}
	if p.Address != nil {
		fields = append(fields, FieldAddress)
	}
	return fields
}

// ApplyTo merges the present fields into b and reports whether anything changed
func (p BuyerPatch) ApplyTo(b *Buyer) bool {
	changed := false
	if p.Payment != nil && *p.Payment != b.Payment {
		b.Payment = *p.Payment
		changed = true
	}
	if p.Email != nil && *p.Email != b.Email {
		b.Email = *p.Email
		changed = true
	}
	if p.Phone != nil && *p.Phone != b.Phone {
		b.Phone = *p.Phone
		changed = true
	}
	if p.Address != nil && *p.Address != b.Address {
		b.Address = *p.Address
		changed = true
	}
	return changed
}

// FieldChange is the payload of buyer:change
type FieldChange struct {
	Field Field  `json:"field"`
	Value string `json:"value"`
}

func ptr(s string) *string {
	return &s
}
