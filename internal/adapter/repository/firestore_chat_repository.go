package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/pkg/errors"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) messages(chatID string) *firestore.CollectionRef {
	return r.client.Collection("chats").Doc(chatID).Collection("messages")
}

func (r *firestoreChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}

	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now

	_, err := r.client.Collection("chats").Doc(chat.ID).Create(ctx, chat)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("Chat already exists")
		}
		return errors.Internal("Failed to create chat", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	doc, err := r.client.Collection("chats").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, errors.Internal("Failed to get chat", err)
	}

	var chat entity.Chat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}
	return &chat, nil
}

func (r *firestoreChatRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	query := r.client.Collection("chats").Where("participants", "array-contains", userID)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count chats", err)
	}
	total := int64(len(countDocs))

	query = query.OrderBy("updatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var chats []*entity.Chat
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate chats", err)
		}

		var chat entity.Chat
		if err := doc.DataTo(&chat); err != nil {
			return nil, 0, errors.Internal("Failed to parse chat data", err)
		}
		chats = append(chats, &chat)
	}

	return chats, total, nil
}

func (r *firestoreChatRepository) UpdateLastMessage(ctx context.Context, chatID string, preview entity.MessagePreview) error {
	_, err := r.client.Collection("chats").Doc(chatID).Update(ctx, []firestore.Update{
		{Path: "lastMessage", Value: preview},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Chat", err)
		}
		return errors.Internal("Failed to update chat", err)
	}
	return nil
}

// Firestore stores timestamps with microsecond precision.
const firestoreTimeStep = time.Microsecond

// markReadChunk stays under the 500-write limit of a Firestore batch.
const markReadChunk = 500

// nextMessageTime keeps creation times strictly increasing within a chat.
func nextMessageTime(last, now time.Time, step time.Duration) time.Time {
	now = now.Truncate(step)
	if !last.IsZero() && !now.After(last) {
		return last.Add(step)
	}
	return now
}

func (r *firestoreChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	col := r.messages(message.ChatID)
	ref := col.Doc(message.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(col.OrderBy("createdAt", firestore.Desc).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		var last time.Time
		if len(docs) > 0 {
			var latest entity.Message
			if err := docs[0].DataTo(&latest); err != nil {
				return err
			}
			last = latest.CreatedAt
		}

		message.CreatedAt = nextMessageTime(last, time.Now(), firestoreTimeStep)
		return tx.Create(ref, message)
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("Message already exists")
		}
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreChatRepository) UpdateMessageStatus(ctx context.Context, chatID, messageID, messageStatus string) error {
	_, err := r.messages(chatID).Doc(messageID).Update(ctx, []firestore.Update{
		{Path: "status", Value: messageStatus},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Message", err)
		}
		return errors.Internal("Failed to update message", err)
	}
	return nil
}

func (r *firestoreChatRepository) ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.messages(chatID).Query

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count messages", err)
	}
	total := int64(len(countDocs))

	query = query.OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var messages []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, 0, errors.Internal("Failed to parse message data", err)
		}
		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreChatRepository) MarkRead(ctx context.Context, chatID, receiverID string) (int, error) {
	docs, err := r.messages(chatID).Where("receiverId", "==", receiverID).Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to load messages", err)
	}

	var unread []*firestore.DocumentRef
	for _, doc := range docs {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return 0, errors.Internal("Failed to parse message data", err)
		}
		if message.Status != entity.MessageStatusRead {
			unread = append(unread, doc.Ref)
		}
	}

	updated := 0
	for _, chunk := range chunkRefs(unread, markReadChunk) {
		batch := r.client.Batch()
		for _, ref := range chunk {
			batch.Update(ref, []firestore.Update{{Path: "status", Value: entity.MessageStatusRead}})
		}
		if _, err := batch.Commit(ctx); err != nil {
			return updated, errors.Internal("Failed to mark messages as read", err)
		}
		updated += len(chunk)
	}
	return updated, nil
}

func chunkRefs(refs []*firestore.DocumentRef, size int) [][]*firestore.DocumentRef {
	var chunks [][]*firestore.DocumentRef
	for len(refs) > size {
		chunks = append(chunks, refs[:size])
		refs = refs[size:]
	}
	if len(refs) > 0 {
		chunks = append(chunks, refs)
	}
	return chunks
}
