package repository

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/pkg/errors"
)

type memoryChatRepository struct {
	store *MemoryStore
}

func NewMemoryChatRepository(store *MemoryStore) repository.ChatRepository {
	return &memoryChatRepository{store: store}
}

func (r *memoryChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	if _, exists := r.store.chats[chat.ID]; exists {
		return errors.Conflict("Chat already exists")
	}
	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	r.store.chats[chat.ID] = cloneChat(chat)
	return nil
}

func (r *memoryChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c, ok := r.store.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	return cloneChat(c), nil
}

func (r *memoryChatRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var chats []*entity.Chat
	for _, c := range r.store.chats {
		if c.HasParticipant(userID) {
			chats = append(chats, cloneChat(c))
		}
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].UpdatedAt.After(chats[j].UpdatedAt) })

	return paginate(chats, limit, offset), int64(len(chats)), nil
}

func (r *memoryChatRepository) UpdateLastMessage(ctx context.Context, chatID string, preview entity.MessagePreview) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c, ok := r.store.chats[chatID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}
	c.LastMessage = &preview
	c.UpdatedAt = time.Now()
	return nil
}

func (r *memoryChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.chats[message.ChatID]; !ok {
		return errors.NotFound("Chat", nil)
	}
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	// Creation order must be strictly increasing within a chat.
	var last time.Time
	if msgs := r.store.messages[message.ChatID]; len(msgs) > 0 {
		last = msgs[len(msgs)-1].CreatedAt
	}
	message.CreatedAt = nextMessageTime(last, time.Now(), time.Nanosecond)
	r.store.messages[message.ChatID] = append(r.store.messages[message.ChatID], cloneMessage(message))
	return nil
}

func (r *memoryChatRepository) UpdateMessageStatus(ctx context.Context, chatID, messageID, status string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, m := range r.store.messages[chatID] {
		if m.ID == messageID {
			m.Status = status
			return nil
		}
	}
	return errors.NotFound("Message", nil)
}

func (r *memoryChatRepository) ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored := r.store.messages[chatID]
	newestFirst := make([]*entity.Message, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		newestFirst = append(newestFirst, cloneMessage(stored[i]))
	}

	return paginate(newestFirst, limit, offset), int64(len(stored)), nil
}

func (r *memoryChatRepository) MarkRead(ctx context.Context, chatID, receiverID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	updated := 0
	for _, m := range r.store.messages[chatID] {
		if m.ReceiverID == receiverID && m.Status != entity.MessageStatusRead {
			m.Status = entity.MessageStatusRead
			updated++
		}
	}
	return updated, nil
}
