package router

import (
	"github.com/labstack/echo/v4"

	"slem/internal/adapter/api/handler"
	"slem/internal/adapter/api/middleware"
	"slem/internal/infrastructure/ratelimit"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Product   *handler.ProductHandler
	Cart      *handler.CartHandler
	Order     *handler.OrderHandler
	Chat      *handler.ChatHandler
	Review    *handler.ReviewHandler
	Seller    *handler.SellerProfileHandler
	WebSocket *handler.WebSocketHandler
	Health    *handler.HealthHandler
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	SetupAuthRouter(e, h.Auth, limiter)
	SetupUserRouter(e, h.User, authMiddleware)
	SetupProductRouter(e, h.Product, authMiddleware)
	SetupCartRouter(e, h.Cart, authMiddleware, limiter)
	SetupOrderRouter(e, h.Order, authMiddleware)
	SetupChatRouter(e, h.Chat, authMiddleware, limiter)
	SetupSellerRouter(e, h.Seller, h.Review, authMiddleware)
	SetupWebSocketRouter(e, h.WebSocket)
	SetupHealthRouter(e, h.Health)
}
