package repository

import (
	"context"

	"slem/internal/domain/entity"
)

type ChatRepository interface {
	// Create fails with a conflict when a chat with the same id already exists.
	Create(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error)
	UpdateLastMessage(ctx context.Context, chatID string, preview entity.MessagePreview) error

	CreateMessage(ctx context.Context, message *entity.Message) error
	UpdateMessageStatus(ctx context.Context, chatID, messageID, status string) error
	// ListMessages pages from newest to oldest.
	ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error)
	// MarkRead flags every unread message addressed to receiverID and returns how many changed.
	MarkRead(ctx context.Context, chatID, receiverID string) (int, error)
}
