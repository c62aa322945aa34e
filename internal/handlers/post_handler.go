package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	posts *services.PostService
	feed  *services.FeedService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService, feed *services.FeedService) *PostHandler {
	return &PostHandler{posts: posts, feed: feed}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost publishes a post or a reply
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.posts.Create(c.Request().Context(), middleware.ExternalID(c), req)
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusCreated, post)
}

// GetPost returns a post with its parent and replies
func (h *PostHandler) GetPost(c echo.Context) error {
	thread, err := h.feed.PostThread(c.Request().Context(), middleware.ExternalID(c), c.Param("id"))
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, thread)
}

// DeletePost removes one of the caller's posts
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.posts.Delete(c.Request().Context(), middleware.ExternalID(c), c.Param("id")); err != nil {
		return toHTTPError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
