package handlers

import (
	"net/http"
	"net/url"

	"github.com/anonto42/nano-social/backend/internal/blobstore"
	"github.com/labstack/echo/v4"
)

// MediaHandler serves objects held by the in-process store so that the URLs
// it hands out can be fetched during local development.
type MediaHandler struct {
	store *blobstore.Memory
}

func NewMediaHandler(store *blobstore.Memory) *MediaHandler {
	return &MediaHandler{store: store}
}

// RegisterMediaRoutes registers the object route under /media
func (h *MediaHandler) RegisterMediaRoutes(e *echo.Echo) {
	e.GET("/media/*", h.GetObject)
}

func (h *MediaHandler) GetObject(c echo.Context) error {
	key, err := url.PathUnescape(c.Param("*"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid media path")
	}
	body, contentType, ok := h.store.Object(key)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Media not found")
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return c.Blob(http.StatusOK, contentType, body)
}
