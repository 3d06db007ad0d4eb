package handler

import (
	"github.com/labstack/echo/v4"
)

// caller returns the identity placed in the context by the auth middleware.
func caller(c echo.Context) (uid, role string) {
	uid, _ = c.Get("uid").(string)
	role, _ = c.Get("role").(string)
	return uid, role
}
