package entity

import "time"

type CartItem struct {
	ProductID string    `json:"productId" firestore:"productId"`
	Quantity  int       `json:"quantity" firestore:"quantity"`
	AddedAt   time.Time `json:"addedAt" firestore:"addedAt"`
}

// Cart is keyed by the buyer's user id; it holds at most one line per product.
type Cart struct {
	BuyerID   string     `json:"buyerId" firestore:"buyerId"`
	Items     []CartItem `json:"items" firestore:"items"`
	CreatedAt time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" firestore:"updatedAt"`
}

func (c *Cart) IndexOf(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
