package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.GET("/notifications/settings", h.GetSettings)
	g.PUT("/notifications/settings", h.UpdateSettings)
}

func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	items, err := h.notifications.List(c.Request().Context(), middleware.ExternalID(c))
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"notifications": items})
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	count, err := h.notifications.UnreadCount(c.Request().Context(), middleware.ExternalID(c))
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"count": count})
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	if err := h.notifications.MarkRead(c.Request().Context(), middleware.ExternalID(c), c.Param("id")); err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"read": true})
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	n, err := h.notifications.MarkAllRead(c.Request().Context(), middleware.ExternalID(c))
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"updated": n})
}

func (h *NotificationHandler) GetSettings(c echo.Context) error {
	settings, err := h.notifications.Settings(c.Request().Context(), middleware.ExternalID(c))
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, settings)
}

func (h *NotificationHandler) UpdateSettings(c echo.Context) error {
	var req models.UpdateNotificationSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	settings, err := h.notifications.UpdateSettings(c.Request().Context(), middleware.ExternalID(c), req)
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, settings)
}
