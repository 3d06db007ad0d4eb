package entity

import "time"

const (
	ProductStatusPending  = "pending"
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"

	MaxProductImages = 4
)

type Product struct {
	ID            string   `json:"id" firestore:"id"`
	SellerID      string   `json:"sellerId" firestore:"sellerId"`
	Title         string   `json:"title" firestore:"title"`
	Description   string   `json:"description" firestore:"description"`
	Price         float64  `json:"price" firestore:"price"`
	DiscountPrice float64  `json:"discountPrice,omitempty" firestore:"discountPrice"`
	Stock         int      `json:"stock" firestore:"stock"`
	SKU           string   `json:"sku,omitempty" firestore:"sku,omitempty"`
	Category      string   `json:"category" firestore:"category"`
	Subcategory   string   `json:"subcategory" firestore:"subcategory"`
	Condition     string   `json:"condition" firestore:"condition"`
	Images        []string `json:"images" firestore:"images"`
	Tags          []string `json:"tags" firestore:"tags"`
	Location      Location `json:"location" firestore:"location"`
	Status        string   `json:"status" firestore:"status"`
	Views         int      `json:"views" firestore:"views"`
	Sales         int      `json:"sales" firestore:"sales"`

	CreatedAt time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" firestore:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" firestore:"deletedAt"`
}

func (p *Product) IsListed() bool {
	return p.DeletedAt == nil && p.Status == ProductStatusActive
}

// ProductFilter drives the public browse listing.
type ProductFilter struct {
	Search    string
	Category  string
	Condition string
	City      string
	Region    string
	PriceMin  float64
	PriceMax  float64
	SellerID  string
	Sort      string // newest | priceLow | priceHigh | popular
}
