package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dradcheenko/weblarek/internal/application/storefront"
)

type stubSessionInfo struct {
	state storefront.CheckoutState
}

func (s stubSessionInfo) ID() string                      { return "session-1" }
func (s stubSessionInfo) State() storefront.CheckoutState { return s.state }

func TestSystemHandler_Health(t *testing.T) {
	h := NewSystemHandler("weblarek", stubSessionInfo{state: storefront.StateBasketOpen})
	c, w := newTestContext()

	h.Health(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, "weblarek", data["service"])
	assert.Equal(t, "session-1", data["session_id"])
	assert.Equal(t, "basket_open", data["state"])
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("weblarek", stubSessionInfo{})
	assert.False(t, h.startTime.IsZero())
	c, w := newTestContext()

	h.GetSystemInfo(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]any)
	assert.Equal(t, "weblarek", data["name"])
	assert.NotEmpty(t, data["go_version"])
	assert.NotEmpty(t, data["uptime"])
}
