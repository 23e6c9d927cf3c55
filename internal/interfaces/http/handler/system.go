package handler

import (
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dradcheenko/weblarek/internal/application/storefront"
	"github.com/Dradcheenko/weblarek/internal/interfaces/http/dto"
)

// SessionInfo identifies the running storefront session
type SessionInfo interface {
	ID() string
	State() storefront.CheckoutState
}

// SystemHandler handles health and runtime endpoints
type SystemHandler struct {
	BaseHandler
	service   string
	session   SessionInfo
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(service string, session SessionInfo) *SystemHandler {
	return &SystemHandler{
		service:   service,
		session:   session,
		startTime: time.Now(),
	}
}

// Health reports that the server is up and which checkout step the session is in
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, dto.HealthResponse{
		Status:    "healthy",
		Service:   h.service,
		SessionID: h.session.ID(),
		State:     h.session.State().String(),
	})
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns the service name, Go version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.service,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
