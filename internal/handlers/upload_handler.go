package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UploadHandler accepts image uploads
type UploadHandler struct {
	media *services.MediaService
}

func NewUploadHandler(media *services.MediaService) *UploadHandler {
	return &UploadHandler{media: media}
}

// RegisterUploadRoutes registers the upload route behind the given middleware
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.POST("/uploads", h.Upload, m...)
}

// Upload stores the multipart field "file". ?kind=avatar|header selects the key prefix.
func (h *UploadHandler) Upload(c echo.Context) error {
	uid := middleware.ExternalID(c)
	if uid == "" {
		return toHTTPError(c, services.ErrUnauthorized)
	}

	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, services.MaxUploadSize+1<<20)
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read file")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to open file")
	}
	defer src.Close()

	url, err := h.media.Upload(c.Request().Context(), uid, services.UploadInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get(echo.HeaderContentType),
		Size:        file.Size,
		Body:        src,
		Kind:        c.QueryParam("kind"),
	})
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusCreated, echo.Map{"url": url})
}
