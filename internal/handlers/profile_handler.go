package handlers

import (
	"net/http"
	"strings"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profiles *services.ProfileService
	feed     *services.FeedService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles *services.ProfileService, feed *services.FeedService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, feed: feed}
}

// RegisterProfileRoutes registers profile routes. The caller's own profile
// lives under /profile, everybody's under /profiles.
func (h *ProfileHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetCurrentProfile)
	g.POST("/profile", h.CreateProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/profile/exists", h.ProfileExists)

	g.GET("/profiles/search", h.SearchProfiles)
	g.GET("/profiles/:username", h.GetProfile)
	g.GET("/profiles/:username/posts", h.GetProfilePosts)
}

func (h *ProfileHandler) GetCurrentProfile(c echo.Context) error {
	profile, err := h.profiles.Current(c.Request().Context(), middleware.ExternalID(c))
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, profile)
}

// CreateProfile registers the caller's profile
func (h *ProfileHandler) CreateProfile(c echo.Context) error {
	var req models.CreateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	profile, err := h.profiles.Create(c.Request().Context(), middleware.ExternalID(c), req)
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusCreated, profile)
}

// UpdateProfile patches the caller's profile
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	profile, err := h.profiles.Update(c.Request().Context(), middleware.ExternalID(c), req)
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, profile)
}

func (h *ProfileHandler) ProfileExists(c echo.Context) error {
	exists, err := h.profiles.Exists(c.Request().Context(), middleware.ExternalID(c))
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"exists": exists})
}

// SearchProfiles matches username or name; repeat ?tag= or pass a
// comma-separated list to filter by tags.
func (h *ProfileHandler) SearchProfiles(c echo.Context) error {
	var tagIDs []string
	for _, raw := range c.QueryParams()["tag"] {
		tagIDs = append(tagIDs, strings.Split(raw, ",")...)
	}
	profiles, err := h.profiles.Search(c.Request().Context(), c.QueryParam("q"), tagIDs)
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, echo.Map{"profiles": profiles})
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	profile, err := h.profiles.GetByUsername(c.Request().Context(), middleware.ExternalID(c), c.Param("username"))
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, profile)
}

func (h *ProfileHandler) GetProfilePosts(c echo.Context) error {
	page, err := h.feed.ProfileTimeline(c.Request().Context(), middleware.ExternalID(c),
		c.Param("username"), c.QueryParam("cursor"), queryLimit(c))
	if err != nil {
		return toHTTPError(c, err)
	}
	return respond(c, http.StatusOK, page)
}
