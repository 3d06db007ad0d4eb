package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/internal/infrastructure/messaging"
	"slem/internal/infrastructure/ratelimit"
	"slem/internal/infrastructure/websocket"
	"slem/pkg/errors"
	"slem/pkg/logger"
)

const maxMessageLength = 2000

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	broadcaster Broadcaster
	notifier    Notifier
	rateLimiter RateLimiter
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	broadcaster Broadcaster,
	notifier Notifier,
	rateLimiter RateLimiter,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		broadcaster: broadcaster,
		notifier:    notifier,
		rateLimiter: rateLimiter,
	}
}

type OpenChatInput struct {
	ProductID   string
	RecipientID string
}

type MessagesReadEvent struct {
	ChatID   string `json:"chatId"`
	ReaderID string `json:"readerId"`
	Count    int    `json:"count"`
}

// ChatID derives a stable id from the participant pair and product, so
// concurrent opens of the same conversation collide on one document.
func ChatID(a, b, productID string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(pair[0]+"|"+pair[1]+"|"+productID)).String()
}

func (uc *ChatUseCase) OpenChat(ctx context.Context, userID string, input OpenChatInput) (*entity.Chat, error) {
	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product.DeletedAt != nil {
		return nil, errors.NotFound("Product", nil)
	}

	recipientID := input.RecipientID
	if recipientID == "" {
		recipientID = product.SellerID
	}
	if recipientID == userID {
		return nil, errors.BadRequest("You cannot start a chat with yourself", nil)
	}
	if _, err := uc.userRepo.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}

	chat := &entity.Chat{
		ID:           ChatID(userID, recipientID, product.ID),
		Participants: []string{userID, recipientID},
		ProductID:    product.ID,
	}
	if err := uc.chatRepo.Create(ctx, chat); err != nil {
		if errors.Is(err, errors.CodeConflict) {
			return uc.chatRepo.GetByID(ctx, chat.ID)
		}
		return nil, err
	}

	logger.Info("Chat %s opened by %s with %s", chat.ID, userID, recipientID)
	return chat, nil
}

func (uc *ChatUseCase) ListChats(ctx context.Context, userID string, page, limit int) ([]*entity.Chat, int64, error) {
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return uc.chatRepo.ListByUser(ctx, userID, limit, offset)
}

func (uc *ChatUseCase) GetChat(ctx context.Context, userID, chatID string) (*entity.Chat, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant in this chat", nil)
	}
	return chat, nil
}

// GetMessages pages newest first and returns each page in chronological order.
func (uc *ChatUseCase) GetMessages(ctx context.Context, userID, chatID string, page, limit int) ([]*entity.Message, int64, error) {
	if _, err := uc.GetChat(ctx, userID, chatID); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	messages, total, err := uc.chatRepo.ListMessages(ctx, chatID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	if messages == nil {
		messages = []*entity.Message{}
	}
	return messages, total, nil
}

// SendMessage persists the message, updates the chat preview, then pushes it
// to the chat room and separately to the receiver's private channel.
func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID, chatID, text string) (*entity.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Validation("Message text is required")
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return nil, errors.Validation(fmt.Sprintf("Message cannot exceed %d characters", maxMessageLength))
	}

	if allowed, wait := uc.rateLimiter.Allow(senderID, ratelimit.ActionSendMessage); !allowed {
		return nil, errors.TooManyRequests(fmt.Sprintf("Too many messages, retry in %s", wait.Round(time.Second)))
	}

	chat, err := uc.GetChat(ctx, senderID, chatID)
	if err != nil {
		return nil, err
	}

	message := &entity.Message{
		ChatID:     chatID,
		SenderID:   senderID,
		ReceiverID: chat.Counterpart(senderID),
		Text:       text,
		Status:     entity.MessageStatusSent,
	}
	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	if err := uc.chatRepo.UpdateLastMessage(ctx, chatID, entity.MessagePreview{
		MessageID: message.ID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: message.CreatedAt,
	}); err != nil {
		logger.Warn("Failed to update last message of chat %s: %v", chatID, err)
	}

	uc.broadcaster.PublishToChat(chatID, websocket.MessageTypeNewMessage, message)

	if err := uc.chatRepo.UpdateMessageStatus(ctx, chatID, message.ID, entity.MessageStatusDelivered); err != nil {
		logger.Warn("Failed to mark message %s delivered: %v", message.ID, err)
	} else {
		message.Status = entity.MessageStatusDelivered
	}
	uc.broadcaster.PublishToUser(message.ReceiverID, websocket.MessageTypeMessageDelivered, message)

	uc.notifier.Notify(ctx, messaging.TopicMessageDelivered, chatID, message)

	return message, nil
}

func (uc *ChatUseCase) MarkRead(ctx context.Context, userID, chatID string) (int, error) {
	if _, err := uc.GetChat(ctx, userID, chatID); err != nil {
		return 0, err
	}

	count, err := uc.chatRepo.MarkRead(ctx, chatID, userID)
	if err != nil {
		return 0, err
	}

	uc.broadcaster.PublishToChat(chatID, websocket.MessageTypeMessagesRead, MessagesReadEvent{
		ChatID:   chatID,
		ReaderID: userID,
		Count:    count,
	})
	return count, nil
}
