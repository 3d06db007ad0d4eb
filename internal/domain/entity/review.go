package entity

import "time"

const MaxReviewComment = 500

// SellerReview is stored under the order id so one order yields at most one review.
type SellerReview struct {
	ID        string    `json:"id" firestore:"id"`
	OrderID   string    `json:"orderId" firestore:"orderId"`
	SellerID  string    `json:"sellerId" firestore:"sellerId"`
	BuyerID   string    `json:"buyerId" firestore:"buyerId"`
	Rating    int       `json:"rating" firestore:"rating"`
	Comment   string    `json:"comment,omitempty" firestore:"comment"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}
