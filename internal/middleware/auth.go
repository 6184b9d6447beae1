package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/venuebook/payment-service/internal/apperrors"
	"github.com/venuebook/payment-service/pkg/auth"
)

const emailContextKey = "auth.email"

// RequireAuth validates the bearer token and stashes the caller's email on
// the context for handlers.
func RequireAuth(verifier *auth.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return apperrors.Authentication("missing bearer token")
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				return apperrors.Authentication("invalid token")
			}

			c.Set(emailContextKey, claims.Email)
			return next(c)
		}
	}
}

// CallerEmail returns the authenticated email set by RequireAuth, or "".
func CallerEmail(c echo.Context) string {
	email, _ := c.Get(emailContextKey).(string)
	return email
}
