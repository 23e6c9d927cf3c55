package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so wrapped copies of a
// sentinel still match with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrNotForSale          = NewDomainError("NOT_FOR_SALE", "Product is not for sale")
	ErrEmptyCart           = NewDomainError("EMPTY_CART", "Cart is empty")
	ErrSubmissionInFlight  = NewDomainError("SUBMISSION_IN_FLIGHT", "Order submission is already in progress")
	ErrMissingCollaborator = NewDomainError("MISSING_COLLABORATOR", "Required collaborator is not configured")
)
