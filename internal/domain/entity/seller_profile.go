package entity

import "time"

const DefaultTrustScore = 50

type Rating struct {
	Average float64 `json:"average" firestore:"average"`
	Count   int     `json:"count" firestore:"count"`
}

// SellerProfile is keyed by the owning user's id.
type SellerProfile struct {
	UserID      string    `json:"userId" firestore:"userId"`
	StoreName   string    `json:"storeName" firestore:"storeName"`
	Description string    `json:"description,omitempty" firestore:"description"`
	BannerImage string    `json:"bannerImage,omitempty" firestore:"bannerImage"`
	Rating      Rating    `json:"rating" firestore:"rating"`
	TrustScore  int       `json:"trustScore" firestore:"trustScore"`
	Followers   []string  `json:"followers" firestore:"followers"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`
}
