package router

import (
	"github.com/labstack/echo/v4"

	"slem/internal/adapter/api/handler"
	"slem/internal/adapter/api/middleware"
	"slem/internal/infrastructure/ratelimit"
)

func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	chats := e.Group("/v1/chats")
	chats.Use(authMiddleware.Authenticate)

	chats.POST("", chatHandler.OpenChat)
	chats.GET("", chatHandler.ListChats)
	chats.GET("/:id", chatHandler.GetChat)
	chats.PUT("/:id/read", chatHandler.MarkRead)

	chats.GET("/:id/messages", chatHandler.GetMessages)
	chats.POST("/:id/messages", chatHandler.SendMessage)
}
