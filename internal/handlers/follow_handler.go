package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow-related HTTP requests
type FollowHandler struct {
	interactions *services.InteractionService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(interactions *services.InteractionService) *FollowHandler {
	return &FollowHandler{interactions: interactions}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/profiles/:id/follow", h.ToggleFollow)
	g.GET("/profiles/:id/follow", h.GetFollowStatus)
}

// ToggleFollow follows or unfollows the profile
func (h *FollowHandler) ToggleFollow(c echo.Context) error {
	res, err := h.interactions.ToggleFollow(c.Request().Context(), middleware.ExternalID(c), c.Param("id"))
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{
		"following":       res.Active,
		"followers_count": res.Count,
	})
}

// GetFollowStatus reports whether the caller follows the profile
func (h *FollowHandler) GetFollowStatus(c echo.Context) error {
	following, err := h.interactions.IsFollowing(c.Request().Context(), middleware.ExternalID(c), c.Param("id"))
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"following": following})
}
