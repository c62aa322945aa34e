package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// RepostHandler handles repost toggling
type RepostHandler struct {
	interactions *services.InteractionService
}

func NewRepostHandler(interactions *services.InteractionService) *RepostHandler {
	return &RepostHandler{interactions: interactions}
}

func (h *RepostHandler) RegisterRepostRoutes(g *echo.Group) {
	g.POST("/posts/:id/repost", h.ToggleRepost)
}

func (h *RepostHandler) ToggleRepost(c echo.Context) error {
	res, err := h.interactions.ToggleRepost(c.Request().Context(), middleware.ExternalID(c), c.Param("id"))
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{
		"reposted":      res.Active,
		"reposts_count": res.Count,
	})
}
