package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Dradcheenko/weblarek/internal/domain/customer"
	"github.com/Dradcheenko/weblarek/internal/interfaces/headless"
	"github.com/Dradcheenko/weblarek/internal/interfaces/http/dto"
)

// Storefront is the session driven by the HTTP API
type Storefront interface {
	Snapshot(ctx context.Context) (headless.Snapshot, error)
	OpenBasket(ctx context.Context) (headless.Snapshot, error)
	SelectProduct(ctx context.Context, productID string) (headless.Snapshot, error)
	TogglePreview(ctx context.Context) (headless.Snapshot, error)
	RemoveFromBasket(ctx context.Context, productID string) (headless.Snapshot, error)
	StartOrder(ctx context.Context) (headless.Snapshot, error)
	ChangeField(ctx context.Context, field customer.Field, value string) (headless.Snapshot, error)
	SubmitOrderForm(ctx context.Context) (headless.Snapshot, error)
	SubmitContacts(ctx context.Context) (headless.Snapshot, error)
	CloseModal(ctx context.Context) (headless.Snapshot, error)
}

// StorefrontHandler maps clicks and keystrokes onto the storefront session.
// Every endpoint answers with the display after the interaction.
type StorefrontHandler struct {
	BaseHandler
	session Storefront
}

// NewStorefrontHandler creates a StorefrontHandler
func NewStorefrontHandler(session Storefront) *StorefrontHandler {
	return &StorefrontHandler{session: session}
}

type interaction func(ctx context.Context) (headless.Snapshot, error)

func (h *StorefrontHandler) respond(c *gin.Context, fn interaction) {
	snap, err := fn(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snap)
}

// GetSession returns the current display
func (h *StorefrontHandler) GetSession(c *gin.Context) {
	h.respond(c, h.session.Snapshot)
}

// OpenBasket clicks the header basket button
func (h *StorefrontHandler) OpenBasket(c *gin.Context) {
	h.respond(c, h.session.OpenBasket)
}

// SelectProduct opens the preview of a gallery card
func (h *StorefrontHandler) SelectProduct(c *gin.Context) {
	id := c.Param("id")
	h.respond(c, func(ctx context.Context) (headless.Snapshot, error) {
		return h.session.SelectProduct(ctx, id)
	})
}

// TogglePreview clicks the buy button of the open preview
func (h *StorefrontHandler) TogglePreview(c *gin.Context) {
	h.respond(c, h.session.TogglePreview)
}

// RemoveFromBasket deletes a basket row
func (h *StorefrontHandler) RemoveFromBasket(c *gin.Context) {
	id := c.Param("id")
	h.respond(c, func(ctx context.Context) (headless.Snapshot, error) {
		return h.session.RemoveFromBasket(ctx, id)
	})
}

// StartOrder clicks the order button of the basket
func (h *StorefrontHandler) StartOrder(c *gin.Context) {
	h.respond(c, h.session.StartOrder)
}

// ChangeField types into a checkout field
func (h *StorefrontHandler) ChangeField(c *gin.Context) {
	field, ok := customer.ParseField(c.Param("field"))
	if !ok {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Unknown buyer field")
		return
	}

	var req dto.ChangeFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	h.respond(c, func(ctx context.Context) (headless.Snapshot, error) {
		return h.session.ChangeField(ctx, field, *req.Value)
	})
}

// NextStep submits the payment and address step
func (h *StorefrontHandler) NextStep(c *gin.Context) {
	h.respond(c, h.session.SubmitOrderForm)
}

// SubmitOrder submits the contacts step and places the order
func (h *StorefrontHandler) SubmitOrder(c *gin.Context) {
	h.respond(c, h.session.SubmitContacts)
}

// CloseModal clicks the modal close button
func (h *StorefrontHandler) CloseModal(c *gin.Context) {
	h.respond(c, h.session.CloseModal)
}

func (h *StorefrontHandler) bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]dto.ValidationDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, dto.ValidationDetail{
				Field:   fe.Field(),
				Message: "failed on the '" + fe.Tag() + "' rule",
			})
		}
		h.ValidationError(c, details)
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
}
