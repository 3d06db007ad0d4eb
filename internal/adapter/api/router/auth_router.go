package router

import (
	"github.com/labstack/echo/v4"

	"slem/internal/adapter/api/handler"
	"slem/internal/adapter/api/middleware"
	"slem/internal/infrastructure/ratelimit"
)

func SetupAuthRouter(e *echo.Echo, authHandler *handler.AuthHandler, limiter *ratelimit.RateLimiter) {
	auth := e.Group("/v1/auth")
	auth.Use(middleware.RateLimit(limiter, ratelimit.ActionAuth))

	auth.POST("/signup", authHandler.SignUp)
	auth.POST("/login", authHandler.Login)
}
