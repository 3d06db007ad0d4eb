package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"slem/internal/adapter/api/middleware"
	ws "slem/internal/infrastructure/websocket"
	"slem/pkg/errors"
	"slem/pkg/logger"
	"slem/pkg/response"
)

type WebSocketHandler struct {
	wsManager      *ws.Manager
	authMiddleware *middleware.AuthMiddleware
	gateway        ws.ChatGateway
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, authMiddleware *middleware.AuthMiddleware, gateway ws.ChatGateway) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:      wsManager,
		authMiddleware: authMiddleware,
		gateway:        gateway,
	}
}

// HandleWebSocket authenticates before the upgrade. Browsers cannot set headers
// on a socket handshake, so the token may also arrive as ?token=.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		var err error
		if token, err = middleware.BearerToken(c); err != nil {
			return response.Error(c, err)
		}
	}

	user, err := h.authMiddleware.ResolveToken(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed for user %s: %v", user.ID, err)
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := ws.NewClient(user.ID, conn, h.gateway)
	if !h.wsManager.Register(client) {
		conn.WriteMessage(gorillaws.CloseMessage, gorillaws.FormatCloseMessage(gorillaws.CloseGoingAway, "server shutting down"))
		conn.Close()
		return nil
	}

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}
