package handler

import (
	"context"

	"github.com/labstack/echo/v4"

	ws "slem/internal/infrastructure/websocket"
	"slem/internal/usecase"
	"slem/pkg/response"
	"slem/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type openChatRequest struct {
	ProductID   string `json:"productId" validate:"required"`
	RecipientID string `json:"recipientId"`
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

func (h *ChatHandler) OpenChat(c echo.Context) error {
	var req openChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid, _ := caller(c)
	chat, err := h.chatUseCase.OpenChat(c.Request().Context(), uid, usecase.OpenChatInput{
		RecipientID: req.RecipientID,
		ProductID:   req.ProductID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, chat)
}

func (h *ChatHandler) ListChats(c echo.Context) error {
	uid, _ := caller(c)
	params := utils.GetPaginationParams(c)

	chats, total, err := h.chatUseCase.ListChats(c.Request().Context(), uid, params.Page, params.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, chats, total, params.Page, params.PageSize)
}

func (h *ChatHandler) GetChat(c echo.Context) error {
	uid, _ := caller(c)

	chat, err := h.chatUseCase.GetChat(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

func (h *ChatHandler) GetMessages(c echo.Context) error {
	uid, _ := caller(c)
	params := utils.GetPaginationParams(c)

	messages, total, err := h.chatUseCase.GetMessages(c.Request().Context(), uid, c.Param("id"), params.Page, params.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, params.Page, params.PageSize)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid, _ := caller(c)
	message, err := h.chatUseCase.SendMessage(c.Request().Context(), uid, c.Param("id"), req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	uid, _ := caller(c)

	count, err := h.chatUseCase.MarkRead(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int{"updated": count})
}

// chatGateway exposes the chat use case to socket clients.
type chatGateway struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatGateway(chatUseCase *usecase.ChatUseCase) ws.ChatGateway {
	return &chatGateway{chatUseCase: chatUseCase}
}

func (g *chatGateway) AuthorizeChat(ctx context.Context, chatID, userID string) error {
	_, err := g.chatUseCase.GetChat(ctx, userID, chatID)
	return err
}

func (g *chatGateway) DeliverMessage(ctx context.Context, chatID, senderID, text string) error {
	_, err := g.chatUseCase.SendMessage(ctx, senderID, chatID, text)
	return err
}

func (g *chatGateway) MarkChatRead(ctx context.Context, chatID, userID string) error {
	_, err := g.chatUseCase.MarkRead(ctx, userID, chatID)
	return err
}
