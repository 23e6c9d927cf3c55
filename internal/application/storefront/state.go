package storefront

// CheckoutState is the position of the session in the checkout flow
type CheckoutState int32

const (
	StateIdle CheckoutState = iota
	StateBrowsing
	StatePreviewing
	StateBasketOpen
	StateOrderForm
	StateContactsForm
	StateSubmitting
	StateSuccess
	StateSubmitFailed
)

var stateNames = map[CheckoutState]string{
	StateIdle:         "idle",
	StateBrowsing:     "browsing",
	StatePreviewing:   "previewing",
	StateBasketOpen:   "basket_open",
	StateOrderForm:    "order_form",
	StateContactsForm: "contacts_form",
	StateSubmitting:   "submitting",
	StateSuccess:      "success",
	StateSubmitFailed: "submit_failed",
}

// String returns the snake_case name of the state
func (s CheckoutState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// HasModal reports whether the modal is open in this state
func (s CheckoutState) HasModal() bool {
	return s != StateIdle && s != StateBrowsing
}

// IsContactsStep reports whether the contacts form is the active form
func (s CheckoutState) IsContactsStep() bool {
	return s == StateContactsForm || s == StateSubmitFailed
}

// IsFormStep reports whether a buyer form is accepting input
func (s CheckoutState) IsFormStep() bool {
	return s == StateOrderForm || s.IsContactsStep()
}
