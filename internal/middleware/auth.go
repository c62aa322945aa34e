package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ContextKeyUID is the echo.Context key holding the caller's external identity id.
const ContextKeyUID = "firebaseUID"

// ErrInvalidToken is returned by verifiers that reject a token.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenVerifier maps a bearer token to an external identity id.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Authenticate resolves an optional bearer token. Requests without an
// Authorization header continue anonymously; a malformed header or a token
// no verifier accepts is rejected with 401.
func Authenticate(verifiers ...TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return next(c)
			}

			tokenParts := strings.SplitN(authHeader, " ", 2)
			if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "bearer") || strings.TrimSpace(tokenParts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}
			token := strings.TrimSpace(tokenParts[1])

			ctx := c.Request().Context()
			for _, v := range verifiers {
				uid, err := v.Verify(ctx, token)
				if err == nil && uid != "" {
					c.Set(ContextKeyUID, uid)
					return next(c)
				}
			}
			slog.DebugContext(ctx, "Rejected bearer token", "path", c.Path())
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}
	}
}

// ExternalID returns the authenticated identity id, or "" for anonymous requests.
func ExternalID(c echo.Context) string {
	uid, _ := c.Get(ContextKeyUID).(string)
	return uid
}
