package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles timeline requests
type FeedHandler struct {
	feed *services.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed/global", h.GetGlobalFeed)
	g.GET("/feed/following", h.GetFollowingFeed)
}

// GetGlobalFeed returns top-level posts from everyone. Anonymous callers are allowed.
func (h *FeedHandler) GetGlobalFeed(c echo.Context) error {
	page, err := h.feed.GlobalTimeline(c.Request().Context(), middleware.ExternalID(c), c.QueryParam("cursor"), queryLimit(c))
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, page)
}

// GetFollowingFeed returns posts by the caller and the profiles they follow
func (h *FeedHandler) GetFollowingFeed(c echo.Context) error {
	page, err := h.feed.FollowingTimeline(c.Request().Context(), middleware.ExternalID(c), c.QueryParam("cursor"), queryLimit(c))
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, page)
}
