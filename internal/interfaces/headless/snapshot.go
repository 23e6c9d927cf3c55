package headless

import (
	"github.com/Dradcheenko/weblarek/internal/application/storefront"
)

// SuccessTitle is the heading of the order confirmation
const SuccessTitle = "Заказ оформлен"

// Snapshot is everything a browser storefront would currently display
type Snapshot struct {
	SessionID string         `json:"session_id"`
	State     string         `json:"state"`
	Header    HeaderSnapshot `json:"header"`
	Gallery   []CardSnapshot `json:"gallery"`
	Modal     ModalSnapshot  `json:"modal"`
}

// HeaderSnapshot is the header basket counter
type HeaderSnapshot struct {
	Counter int `json:"counter"`
}

// CardSnapshot is a rendered product card
type CardSnapshot struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Category         string `json:"category,omitempty"`
	CategoryModifier string `json:"category_modifier,omitempty"`
	Image            string `json:"image,omitempty"`
	Price            string `json:"price"`
	Index            int    `json:"index,omitempty"`
}

// ModalSnapshot holds the open modal content, if any
type ModalSnapshot struct {
	Open    bool             `json:"open"`
	Content string           `json:"content,omitempty"`
	Preview *PreviewSnapshot `json:"preview,omitempty"`
	Basket  *BasketSnapshot  `json:"basket,omitempty"`
	Form    *FormSnapshot    `json:"form,omitempty"`
	Success *SuccessSnapshot `json:"success,omitempty"`
}

// ButtonSnapshot is a button label and state
type ButtonSnapshot struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// PreviewSnapshot is the product detail
type PreviewSnapshot struct {
	Card        CardSnapshot   `json:"card"`
	Description string         `json:"description"`
	Button      ButtonSnapshot `json:"button"`
}

// BasketSnapshot is the cart listing
type BasketSnapshot struct {
	Items          []CardSnapshot `json:"items"`
	Total          string         `json:"total"`
	SubmitDisabled bool           `json:"submit_disabled"`
}

// FormSnapshot is a checkout step
type FormSnapshot struct {
	Step           string            `json:"step"`
	Values         map[string]string `json:"values"`
	Errors         map[string]string `json:"errors"`
	SubmitDisabled bool              `json:"submit_disabled"`
	FormError      string            `json:"form_error,omitempty"`
}

// SuccessSnapshot is the order confirmation
type SuccessSnapshot struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		SessionID: s.id,
		State:     s.presenter.State().String(),
		Header:    HeaderSnapshot{Counter: s.header.counter},
		Gallery:   cardSnapshots(s.gallery.cards),
	}

	content := s.modal.Content()
	if content == nil {
		return snap
	}
	snap.Modal.Open = true
	snap.Modal.Content = string(content.ContentKind())

	switch v := content.(type) {
	case *PreviewView:
		card := s.cards.CatalogCard(v.product, nil).(*CardView)
		snap.Modal.Preview = &PreviewSnapshot{
			Card:        cardSnapshot(card),
			Description: v.product.Description,
			Button:      ButtonSnapshot{Label: v.label, Disabled: v.disabled},
		}
	case *BasketView:
		snap.Modal.Basket = &BasketSnapshot{
			Items:          cardSnapshots(v.items),
			Total:          v.prices.Total(v.total),
			SubmitDisabled: v.disabled,
		}
	case *FormView:
		snap.Modal.Form = formSnapshot(v)
	case *SuccessView:
		snap.Modal.Success = &SuccessSnapshot{
			Title:       SuccessTitle,
			Description: s.prices.Charged(v.total),
		}
	}
	return snap
}

func cardSnapshots(cards []storefront.Card) []CardSnapshot {
	out := make([]CardSnapshot, 0, len(cards))
	for _, c := range cards {
		if card, ok := c.(*CardView); ok {
			out = append(out, cardSnapshot(card))
		}
	}
	return out
}

func cardSnapshot(c *CardView) CardSnapshot {
	snap := CardSnapshot{
		ID:       c.ID,
		Title:    c.Title,
		Category: c.Category,
		Image:    c.Image,
		Price:    c.Price,
		Index:    c.Index,
	}
	if c.Category != "" {
		snap.CategoryModifier = CategoryModifier(c.Category)
	}
	return snap
}

func formSnapshot(v *FormView) *FormSnapshot {
	snap := &FormSnapshot{
		Step:           string(v.kind),
		Values:         make(map[string]string, len(v.fields)),
		Errors:         make(map[string]string, len(v.errors)),
		SubmitDisabled: v.disabled,
		FormError:      v.formError,
	}
	for _, f := range v.fields {
		snap.Values[string(f)] = v.values[f]
	}
	for f, msg := range v.errors {
		snap.Errors[string(f)] = msg
	}
	return snap
}
