package entity

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

const (
	PaymentCOD         = "COD"
	PaymentMobileMoney = "MOBILE_MONEY"
)

const (
	OrderEventCreated       = "CREATED"
	OrderEventStatusChanged = "STATUS_CHANGED"
)

// OrderItem freezes the unit price at placement time.
type OrderItem struct {
	ProductID string  `json:"productId" firestore:"productId"`
	Title     string  `json:"title" firestore:"title"`
	Quantity  int     `json:"quantity" firestore:"quantity"`
	UnitPrice float64 `json:"unitPrice" firestore:"unitPrice"`
	LineTotal float64 `json:"lineTotal" firestore:"lineTotal"`
}

type Order struct {
	ID              string      `json:"id" firestore:"id"`
	BuyerID         string      `json:"buyerId" firestore:"buyerId"`
	SellerID        string      `json:"sellerId" firestore:"sellerId"`
	Items           []OrderItem `json:"items" firestore:"items"`
	DeliveryAddress string      `json:"deliveryAddress" firestore:"deliveryAddress"`
	PaymentMethod   string      `json:"paymentMethod" firestore:"paymentMethod"`
	Subtotal        float64     `json:"subtotal" firestore:"subtotal"`
	DeliveryFee     float64     `json:"deliveryFee" firestore:"deliveryFee"`
	Total           float64     `json:"total" firestore:"total"`
	Status          OrderStatus `json:"status" firestore:"status"`
	CreatedAt       time.Time   `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt" firestore:"updatedAt"`
}

// OrderEvent is append-only. From is nil for the creation event.
type OrderEvent struct {
	ID        string       `json:"id" firestore:"id"`
	OrderID   string       `json:"orderId" firestore:"orderId"`
	From      *OrderStatus `json:"from" firestore:"from"`
	To        OrderStatus  `json:"to" firestore:"to"`
	ActorID   string       `json:"actorId" firestore:"actorId"`
	Type      string       `json:"type" firestore:"type"`
	CreatedAt time.Time    `json:"createdAt" firestore:"createdAt"`
}

type OrderFilter struct {
	BuyerID  string
	SellerID string
	Status   OrderStatus
}
