package entity

import "time"

type MessagePreview struct {
	MessageID string    `json:"messageId" firestore:"messageId"`
	SenderID  string    `json:"senderId" firestore:"senderId"`
	Text      string    `json:"text" firestore:"text"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// Chat pairs two participants around one product.
type Chat struct {
	ID           string          `json:"id" firestore:"id"`
	Participants []string        `json:"participants" firestore:"participants"`
	ProductID    string          `json:"productId" firestore:"productId"`
	LastMessage  *MessagePreview `json:"lastMessage,omitempty" firestore:"lastMessage"`
	CreatedAt    time.Time       `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt" firestore:"updatedAt"`
}

func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Counterpart returns the participant that is not userID.
func (c *Chat) Counterpart(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}
