package handlers

import (
	"net/http"
	"strconv"

	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	base
	notificationService NotificationServiceInterface
}

func NewNotificationHandler(notificationService NotificationServiceInterface, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{base: newBase(log), notificationService: notificationService}
}

func (h *NotificationHandler) List(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	notifications, err := h.notificationService.List(c.Request.Context(), userID, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(c *drift.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	notificationID, ok := pathID(c, "notificationId", "notification")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
		h.fail(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "notification marked as read")
}
