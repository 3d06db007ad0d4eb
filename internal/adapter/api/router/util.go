package router

import (
	"github.com/labstack/echo/v4"

	"slem/internal/adapter/api/middleware"
)

// OptionalAuth identifies the caller when a valid bearer token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(authMiddleware *middleware.AuthMiddleware) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := middleware.BearerToken(c)
			if err != nil {
				return next(c)
			}

			user, err := authMiddleware.ResolveToken(c.Request().Context(), token)
			if err != nil {
				return next(c)
			}

			middleware.SetUser(c, user)
			return next(c)
		}
	}
}
