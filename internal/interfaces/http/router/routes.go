package router

import (
	"github.com/Dradcheenko/weblarek/internal/interfaces/http/handler"
)

// SystemRoutes exposes health and runtime info
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "").
		GET("/health", h.Health).
		GET("/system/info", h.GetSystemInfo)
}

// StorefrontRoutes exposes the storefront session. Each route is one
// click or keystroke of a browser visitor.
func StorefrontRoutes(h *handler.StorefrontHandler) *DomainGroup {
	session := NewDomainGroup("storefront", "/session").
		GET("", h.GetSession).
		POST("/products/:id/select", h.SelectProduct).
		POST("/preview/toggle", h.TogglePreview).
		POST("/modal/close", h.CloseModal).
		PUT("/buyer/:field", h.ChangeField)

	session.Group("basket", "/basket").
		POST("/open", h.OpenBasket).
		DELETE("/items/:id", h.RemoveFromBasket)

	session.Group("order", "/order").
		POST("/open", h.StartOrder).
		POST("/next", h.NextStep).
		POST("/submit", h.SubmitOrder)

	return session
}
