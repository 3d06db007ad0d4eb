package router

import (
	"github.com/labstack/echo/v4"

	"slem/internal/adapter/api/handler"
)

// SetupWebSocketRouter mounts /ws without middleware; the handler authenticates
// before upgrading.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws", wsHandler.HandleWebSocket)
}
