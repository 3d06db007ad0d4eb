package repository

import (
	"sync"

	"slem/internal/domain/entity"
)

// MemoryStore is a process-local document store. One mutex guards every
// collection, so each repository call is atomic with respect to all others.
// It backs STORE_DRIVER=memory and the test suites.
type MemoryStore struct {
	mu sync.Mutex

	users    map[string]*entity.User
	products map[string]*entity.Product
	carts    map[string]*entity.Cart
	orders   map[string]*entity.Order
	events   map[string][]*entity.OrderEvent
	chats    map[string]*entity.Chat
	messages map[string][]*entity.Message
	reviews  map[string]*entity.SellerReview
	profiles map[string]*entity.SellerProfile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*entity.User),
		products: make(map[string]*entity.Product),
		carts:    make(map[string]*entity.Cart),
		orders:   make(map[string]*entity.Order),
		events:   make(map[string][]*entity.OrderEvent),
		chats:    make(map[string]*entity.Chat),
		messages: make(map[string][]*entity.Message),
		reviews:  make(map[string]*entity.SellerReview),
		profiles: make(map[string]*entity.SellerProfile),
	}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.DeliveryAddresses = append([]entity.DeliveryAddress(nil), u.DeliveryAddresses...)
	return &c
}

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	c.Images = append([]string(nil), p.Images...)
	c.Tags = append([]string(nil), p.Tags...)
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func cloneCart(cart *entity.Cart) *entity.Cart {
	c := *cart
	c.Items = append([]entity.CartItem(nil), cart.Items...)
	return &c
}

func cloneOrder(o *entity.Order) *entity.Order {
	c := *o
	c.Items = append([]entity.OrderItem(nil), o.Items...)
	return &c
}

func cloneEvent(e *entity.OrderEvent) *entity.OrderEvent {
	c := *e
	if e.From != nil {
		from := *e.From
		c.From = &from
	}
	return &c
}

func cloneChat(ch *entity.Chat) *entity.Chat {
	c := *ch
	c.Participants = append([]string(nil), ch.Participants...)
	if ch.LastMessage != nil {
		lm := *ch.LastMessage
		c.LastMessage = &lm
	}
	return &c
}

func cloneMessage(m *entity.Message) *entity.Message {
	c := *m
	return &c
}

func cloneProfile(p *entity.SellerProfile) *entity.SellerProfile {
	c := *p
	c.Followers = append([]string(nil), p.Followers...)
	return &c
}

func cloneReview(r *entity.SellerReview) *entity.SellerReview {
	c := *r
	return &c
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > len(items) {
		offset = len(items)
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
