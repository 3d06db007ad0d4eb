package middleware

import (
	"github.com/labstack/echo/v4"

	"slem/pkg/errors"
	"slem/pkg/response"
)

// RequireRoles admits callers whose role is in the set. It must run after Authenticate.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.Get("uid").(string); !ok {
				return response.Error(c, errors.Unauthorized("Authentication required", nil))
			}

			role, _ := c.Get("role").(string)
			if !allowed[role] {
				return response.Error(c, errors.Forbidden("You do not have permission to perform this action", nil))
			}
			return next(c)
		}
	}
}
