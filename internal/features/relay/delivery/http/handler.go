package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"message-relay-backend/internal/common/errors"
	"message-relay-backend/internal/common/middleware"
	"message-relay-backend/internal/features/relay/models"
	"message-relay-backend/internal/features/relay/service"
)

type RelayHandler struct {
	service service.RelayService
}

func NewRelayHandler(service service.RelayService) *RelayHandler {
	return &RelayHandler{
		service: service,
	}
}

// RegisterRoutes mounts the intake route and the admin routes. adminGuard is
// applied to admin routes only and may be empty.
func (h *RelayHandler) RegisterRoutes(router *gin.RouterGroup, adminGuard ...gin.HandlerFunc) {
	router.POST("/", h.Send)

	admin := router.Group("", adminGuard...)
	{
		admin.GET("/status", h.Status)
		admin.DELETE("/reset", h.ResetAll)
		admin.DELETE("/reset/:ip", h.ResetAddress)
		admin.POST("/set-capture", h.Arm)
		admin.DELETE("/set-capture", h.Disarm)
		admin.GET("/capture", h.CaptureStatus)
	}
}

// @Summary Relay a message
// @Description Counts the message for the sender IP and forwards it to Telegram. If a capture is armed and this is the first message of the IP, the IP is bound to the pending credentials instead and nothing is forwarded.
// @Tags relay
// @Accept json
// @Produce json
// @Param request body models.SendRequest true "Message"
// @Success 200 {object} models.SendResponse "Message forwarded (models.CaptureResponse when the IP was captured)"
// @Failure 400 {object} middleware.ErrorResponse "Missing message"
// @Failure 502 {object} middleware.ErrorResponse "Telegram delivery failed"
// @Router / [post]
func (h *RelayHandler) Send(c *gin.Context) {
	var req models.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}
	if req.Message == "" {
		_ = c.Error(errors.NewValidationError("message", "required"))
		return
	}

	ip := middleware.ClientAddress(c)
	out, err := h.service.Send(c.Request.Context(), ip, req.Message)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if out.Captured() {
		c.JSON(http.StatusOK, models.CaptureResponse{
			Message: fmt.Sprintf("IP %s captured", ip),
			IP:      ip,
		})
		return
	}

	c.JSON(http.StatusOK, models.SendResponse{
		Message:    "Message sent",
		IP:         ip,
		Attempts:   out.Count,
		Redirected: out.Redirected,
	})
}

// @Summary Attempt counters
// @Description Snapshot of attempt counters keyed by IP
// @Tags admin
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} map[string]int
// @Router /status [get]
func (h *RelayHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Status())
}

// @Summary Reset everything
// @Description Clears every attempt counter and every captured IP
// @Tags admin
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.MessageResponse
// @Router /reset [delete]
func (h *RelayHandler) ResetAll(c *gin.Context) {
	h.service.ResetAll(c.Request.Context())
	c.JSON(http.StatusOK, models.MessageResponse{Message: "All state reset"})
}

// @Summary Reset one IP
// @Description Clears the attempt counter and the captured credentials of one IP
// @Tags admin
// @Produce json
// @Security TelegramInitData
// @Param ip path string true "Client IP"
// @Success 200 {object} models.MessageResponse
// @Router /reset/{ip} [delete]
func (h *RelayHandler) ResetAddress(c *gin.Context) {
	ip := c.Param("ip")
	h.service.ResetAddress(c.Request.Context(), ip)
	c.JSON(http.StatusOK, models.MessageResponse{Message: fmt.Sprintf("IP %s removed", ip)})
}

// @Summary Arm a capture
// @Description The next IP whose first message arrives is bound to these credentials. Arming again replaces the pending credentials.
// @Tags admin
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body models.ArmRequest true "Credentials"
// @Success 200 {object} models.ArmResponse
// @Failure 400 {object} middleware.ErrorResponse "Missing parameters"
// @Router /set-capture [post]
func (h *RelayHandler) Arm(c *gin.Context) {
	var req models.ArmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewValidationError("body", err.Error()))
		return
	}

	replaced, err := h.service.Arm(c.Request.Context(), req.BotToken, req.ChatID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.ArmResponse{
		Message:  "Waiting for the next new IP",
		Replaced: replaced,
	})
}

// @Summary Cancel a pending capture
// @Tags admin
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.MessageResponse
// @Router /set-capture [delete]
func (h *RelayHandler) Disarm(c *gin.Context) {
	msg := "No capture was pending"
	if h.service.Disarm(c.Request.Context()) {
		msg = "Pending capture cancelled"
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: msg})
}

// @Summary Capture status
// @Description Whether a capture is armed and how many IPs are captured
// @Tags admin
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.CaptureStatus
// @Router /capture [get]
func (h *RelayHandler) CaptureStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.CaptureStatus())
}
