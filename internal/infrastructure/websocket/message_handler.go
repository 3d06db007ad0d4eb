package websocket

import (
	"context"
	"encoding/json"
	"time"

	"slem/pkg/errors"
	"slem/pkg/logger"
)

// Client frames
const (
	MessageTypePing        = "ping"
	MessageTypeJoinChat    = "joinChat"
	MessageTypeLeaveChat   = "leaveChat"
	MessageTypeTyping      = "typing"
	MessageTypeStopTyping  = "stopTyping"
	MessageTypeSendMessage = "sendMessage"
	MessageTypeMarkRead    = "markRead"
)

// Server frames
const (
	MessageTypePong             = "pong"
	MessageTypeJoinedChat       = "joinedChat"
	MessageTypeNewMessage       = "newMessage"
	MessageTypeMessageDelivered = "messageDelivered"
	MessageTypeMessagesRead     = "messagesRead"
	MessageTypeOrderCreated     = "orderCreated"
	MessageTypeOrderUpdated     = "orderUpdated"
	MessageTypeError            = "error"
)

const handlerTimeout = 10 * time.Second

// ChatGateway is the chat application service as seen from the socket layer.
type ChatGateway interface {
	AuthorizeChat(ctx context.Context, chatID, userID string) error
	DeliverMessage(ctx context.Context, chatID, senderID, text string) error
	MarkChatRead(ctx context.Context, chatID, userID string) error
}

// WSMessage is the server frame envelope.
type WSMessage struct {
	Type      string      `json:"type"`
	Channel   string      `json:"channel,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// ClientMessage is what a client sends.
type ClientMessage struct {
	Type   string          `json:"type"`
	ChatID string          `json:"chatId,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type SendMessageData struct {
	Text string `json:"text"`
}

type TypingData struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HandleClientMessage dispatches one inbound frame.
func (m *Manager) HandleClientMessage(client *Client, messageBytes []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		m.sendErrorToClient(client, errors.BadRequest("Invalid message format", err))
		return
	}

	logger.Debug("WebSocket: %s from %s", msg.Type, client.UserID)

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	switch msg.Type {
	case MessageTypePing:
		m.sendToClient(client, MessageTypePong, "", nil)

	case MessageTypeJoinChat:
		m.handleJoinChat(ctx, client, msg)

	case MessageTypeLeaveChat:
		if msg.ChatID != "" {
			m.Unsubscribe(client, ChatChannel(msg.ChatID))
		}

	case MessageTypeTyping, MessageTypeStopTyping:
		m.handleTyping(client, msg)

	case MessageTypeSendMessage:
		m.handleSendMessage(ctx, client, msg)

	case MessageTypeMarkRead:
		m.handleMarkRead(ctx, client, msg)

	default:
		m.sendErrorToClient(client, errors.BadRequest("Unknown message type: "+msg.Type, nil))
	}
}

func (m *Manager) handleJoinChat(ctx context.Context, client *Client, msg ClientMessage) {
	if msg.ChatID == "" {
		m.sendErrorToClient(client, errors.Validation("chatId is required"))
		return
	}
	if err := client.gateway.AuthorizeChat(ctx, msg.ChatID, client.UserID); err != nil {
		m.sendErrorToClient(client, err)
		return
	}

	channel := ChatChannel(msg.ChatID)
	m.Subscribe(client, channel)
	m.sendToClient(client, MessageTypeJoinedChat, channel, map[string]string{"chatId": msg.ChatID})
}

// Typing indicators are ephemeral and only reach the other members of a joined chat.
func (m *Manager) handleTyping(client *Client, msg ClientMessage) {
	channel := ChatChannel(msg.ChatID)
	if msg.ChatID == "" || !m.IsSubscribed(client, channel) {
		m.sendErrorToClient(client, errors.Forbidden("Join the chat first", nil))
		return
	}

	m.publish(channel, msg.Type, TypingData{ChatID: msg.ChatID, UserID: client.UserID}, client)
}

func (m *Manager) handleSendMessage(ctx context.Context, client *Client, msg ClientMessage) {
	var data SendMessageData
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			m.sendErrorToClient(client, errors.BadRequest("Invalid message data", err))
			return
		}
	}
	if msg.ChatID == "" || data.Text == "" {
		m.sendErrorToClient(client, errors.Validation("chatId and text are required"))
		return
	}

	if err := client.gateway.DeliverMessage(ctx, msg.ChatID, client.UserID, data.Text); err != nil {
		m.sendErrorToClient(client, err)
	}
}

func (m *Manager) handleMarkRead(ctx context.Context, client *Client, msg ClientMessage) {
	if msg.ChatID == "" {
		m.sendErrorToClient(client, errors.Validation("chatId is required"))
		return
	}
	if err := client.gateway.MarkChatRead(ctx, msg.ChatID, client.UserID); err != nil {
		m.sendErrorToClient(client, err)
	}
}

func (m *Manager) sendToClient(client *Client, event, channel string, data interface{}) {
	payload, err := json.Marshal(WSMessage{
		Type:      event,
		Channel:   channel,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		logger.Error("WebSocket: failed to marshal %s: %v", event, err)
		return
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if !m.clients[client] {
		return
	}
	select {
	case client.Send <- payload:
	default:
		logger.Warn("WebSocket: send buffer full for %s, dropping %s", client.UserID, event)
	}
}

func (m *Manager) sendErrorToClient(client *Client, err error) {
	data := ErrorData{Code: errors.CodeInternal, Message: "An unexpected error occurred"}
	if appErr, ok := errors.As(err); ok {
		data.Code = appErr.Code
		if appErr.Status < 500 {
			data.Message = appErr.Message
		}
	}
	if data.Code == errors.CodeInternal {
		logger.Error("WebSocket: %s: %v", client.UserID, err)
	}
	m.sendToClient(client, MessageTypeError, "", data)
}
