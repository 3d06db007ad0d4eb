package usecase

import (
	"context"
	"io"
	"time"
)

// Broadcaster pushes realtime events. The websocket manager satisfies it.
type Broadcaster interface {
	PublishToUser(userID, event string, data interface{})
	PublishToChat(chatID, event string, data interface{})
}

// Notifier hands events to the notification pipeline. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, topic, key string, event interface{})
}

type ProductCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Invalidate(ctx context.Context) error
}

type ImageStore interface {
	UploadImage(ctx context.Context, file io.Reader, contentType, folder string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

type TokenIssuer interface {
	Issue(userID, role string) (string, error)
}

// RateLimiter is keyed by caller and action.
type RateLimiter interface {
	Allow(key, action string) (bool, time.Duration)
}
