package entity

import "time"

const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)

type Message struct {
	ID         string    `json:"id" firestore:"id"`
	ChatID     string    `json:"chatId" firestore:"chatId"`
	SenderID   string    `json:"senderId" firestore:"senderId"`
	ReceiverID string    `json:"receiverId" firestore:"receiverId"`
	Text       string    `json:"text" firestore:"text"`
	Status     string    `json:"status" firestore:"status"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
}
