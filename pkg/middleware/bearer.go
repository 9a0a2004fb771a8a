package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// TokenVerifier resolves a bearer token to a uid.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Bearer requires "Authorization: Bearer <id token>" and stores the verified
// uid under "uid". Requests the skipper accepts pass through untouched.
func Bearer(v TokenVerifier, skip func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip != nil && skip(c) {
				return next(c)
			}
			h := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(h, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Inicia sesión para continuar."})
			}
			uid, err := v.Verify(c.Request().Context(), token)
			if err != nil || uid == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Tu sesión no es válida o ha expirado."})
			}
			c.Set("uid", uid)
			return next(c)
		}
	}
}

// PublicPaths skips auth for exact paths and for anything under a prefix
// ending in "/".
func PublicPaths(paths ...string) func(echo.Context) bool {
	return func(c echo.Context) bool {
		p := c.Request().URL.Path
		for _, x := range paths {
			if p == x || (strings.HasSuffix(x, "/") && strings.HasPrefix(p, x)) {
				return true
			}
		}
		return false
	}
}
