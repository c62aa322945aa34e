package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// AuthHandler exchanges identity provider tokens for session tokens
type AuthHandler struct {
	idTokens middleware.TokenVerifier
	sessions *middleware.SessionTokens
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(idTokens middleware.TokenVerifier, sessions *middleware.SessionTokens) *AuthHandler {
	return &AuthHandler{idTokens: idTokens, sessions: sessions}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/auth/session", h.CreateSession)
}

// SessionRequest defines the request body for a session exchange
type SessionRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// CreateSession verifies a Firebase ID token and issues a local session JWT
func (h *AuthHandler) CreateSession(c echo.Context) error {
	var req SessionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	uid, err := h.idTokens.Verify(c.Request().Context(), req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	token, expires, err := h.sessions.Issue(uid)
	if err != nil {
		return toHTTPError(c, err)
	}

	return respond(c, http.StatusOK, echo.Map{
		"token":      token,
		"expires_at": expires,
	})
}
