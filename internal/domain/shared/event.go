package shared

// EventName identifies an event on the bus. Producers and consumers must use
// the constants below rather than string literals.
type EventName string

// Event names exchanged between models, views and the presenter
const (
	EventCatalogChanged  EventName = "catalog:changed"
	EventProductSelected EventName = "catalog:product-selected"
	EventCartChanged     EventName = "cart:changed"
	EventOrderUpdate     EventName = "order:update"
	EventBasketOpen      EventName = "basket:open"
	EventOrderOpen       EventName = "order:open"
	EventContactsOpen    EventName = "form:contacts-open"
	EventOrderSubmit     EventName = "order:submit"
	EventBuyerChange     EventName = "buyer:change"
	EventModalClose      EventName = "modal:close"
)

// AllEventNames returns every known event name
func AllEventNames() []EventName {
	return []EventName{
		EventCatalogChanged,
		EventProductSelected,
		EventCartChanged,
		EventOrderUpdate,
		EventBasketOpen,
		EventOrderOpen,
		EventContactsOpen,
		EventOrderSubmit,
		EventBuyerChange,
		EventModalClose,
	}
}

// String returns the wire form of the event name
func (n EventName) String() string {
	return string(n)
}

// Event is a named notification with an optional untyped payload
type Event struct {
	Name    EventName
	Payload any
}

// NewEvent creates an event
func NewEvent(name EventName, payload any) Event {
	return Event{Name: name, Payload: payload}
}
