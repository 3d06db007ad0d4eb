package router

import (
	"github.com/labstack/echo/v4"

	"slem/internal/adapter/api/handler"
	"slem/internal/adapter/api/middleware"
	"slem/internal/infrastructure/ratelimit"
)

func SetupCartRouter(e *echo.Echo, cartHandler *handler.CartHandler, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	cart := e.Group("/v1/cart")
	cart.Use(authMiddleware.Authenticate)
	cart.Use(middleware.RateLimit(limiter, ratelimit.ActionCart))

	cart.GET("", cartHandler.GetCart)
	cart.POST("/items", cartHandler.AddItem)
	cart.PATCH("/items/:productId", cartHandler.UpdateItem)
	cart.DELETE("/items/:productId", cartHandler.RemoveItem)
	cart.DELETE("", cartHandler.ClearCart)
}
