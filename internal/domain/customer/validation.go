package customer

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Error messages shown next to invalid fields
const (
	MessagePayment = "Неверный способ оплаты"
	MessageEmail   = "Неверный формат email"
	MessagePhone   = "Телефон должен содержать не менее 10 цифр"
	MessageAddress = "Адрес должен содержать более 5 символов"
)

const (
	minPhoneDigits    = 10
	minAddressRunesGT = 5
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationResult is the outcome of validating a buyer record.
// Errors only holds keys for invalid fields.
type ValidationResult struct {
	Valid  bool             `json:"valid"`
	Errors map[Field]string `json:"errors"`
}

// Error returns the message for a field, or "" when it is valid or unchecked
func (r ValidationResult) Error(f Field) string {
	return r.Errors[f]
}

// HasError reports whether the field failed validation
func (r ValidationResult) HasError(f Field) bool {
	_, ok := r.Errors[f]
	return ok
}

// Only returns a result restricted to the given fields
func (r ValidationResult) Only(fields ...Field) ValidationResult {
	out := ValidationResult{Valid: true, Errors: make(map[Field]string)}
	for _, f := range fields {
		if msg, ok := r.Errors[f]; ok {
			out.Errors[f] = msg
			out.Valid = false
		}
	}
	return out
}

// buyerInput mirrors Buyer with validation tags
type buyerInput struct {
	Payment string `validate:"oneof=card cash"`
	Email   string `validate:"buyer_email"`
	Phone   string `validate:"buyer_phone"`
	Address string `validate:"buyer_address"`
}

var structFields = map[Field]string{
	FieldPayment: "Payment",
	FieldEmail:   "Email",
	FieldPhone:   "Phone",
	FieldAddress: "Address",
}

var fieldsByStruct = map[string]Field{
	"Payment": FieldPayment,
	"Email":   FieldEmail,
	"Phone":   FieldPhone,
	"Address": FieldAddress,
}

var messages = map[Field]string{
	FieldPayment: MessagePayment,
	FieldEmail:   MessageEmail,
	FieldPhone:   MessagePhone,
	FieldAddress: MessageAddress,
}

// Validator applies the buyer rules. It holds no record state and is safe
// for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the buyer rules registered
func NewValidator() *Validator {
	v := validator.New()
	// Registration only fails for empty tags or nil funcs
	_ = v.RegisterValidation("buyer_email", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("buyer_phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("buyer_address", func(fl validator.FieldLevel) bool {
		return IsValidAddress(fl.Field().String())
	})
	return &Validator{validate: v}
}

var defaultValidator = NewValidator()

// Validate checks only the fields present in the partial record
func Validate(record BuyerPatch) ValidationResult {
	return defaultValidator.Validate(record)
}

// ValidateFull checks all four fields
func ValidateFull(record Buyer) ValidationResult {
	return defaultValidator.ValidateFull(record)
}

// ValidateFields checks the listed fields of a full record
func ValidateFields(record Buyer, fields ...Field) ValidationResult {
	return defaultValidator.ValidateFields(record, fields...)
}

// Validate checks only the fields present in the partial record
func (v *Validator) Validate(record BuyerPatch) ValidationResult {
	var b Buyer
	record.ApplyTo(&b)
	return v.ValidateFields(b, record.Fields()...)
}

// ValidateFull checks all four fields
func (v *Validator) ValidateFull(record Buyer) ValidationResult {
	return v.collect(v.validate.Struct(toInput(record)))
}

// ValidateFields checks the listed fields of a full record
func (v *Validator) ValidateFields(record Buyer, fields ...Field) ValidationResult {
	if len(fields) == 0 {
		return ValidationResult{Valid: true, Errors: make(map[Field]string)}
	}
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if name, ok := structFields[f]; ok {
			names = append(names, name)
		}
	}
	return v.collect(v.validate.StructPartial(toInput(record), names...))
}

func (v *Validator) collect(err error) ValidationResult {
	result := ValidationResult{Valid: true, Errors: make(map[Field]string)}
	if err == nil {
		return result
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// InvalidValidationError only happens for non-struct input
		panic(err)
	}
	for _, e := range validationErrors {
		f, ok := fieldsByStruct[e.StructField()]
		if !ok {
			continue
		}
		result.Errors[f] = messages[f]
		result.Valid = false
	}
	return result
}

func toInput(b Buyer) *buyerInput {
	return &buyerInput{
		Payment: string(b.Payment),
		Email:   b.Email,
		Phone:   b.Phone,
		Address: b.Address,
	}
}

// IsValidEmail reports whether s looks like local@domain.tld
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// PhoneDigits counts the ASCII digits in s
func PhoneDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// IsValidPhone reports whether s carries at least ten digits
func IsValidPhone(s string) bool {
	return PhoneDigits(s) >= minPhoneDigits
}

// IsValidAddress reports whether the trimmed address is longer than five characters
func IsValidAddress(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) > minAddressRunesGT
}
