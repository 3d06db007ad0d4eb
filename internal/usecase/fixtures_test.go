package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"slem/internal/adapter/repository"
	"slem/internal/domain/entity"
	domainrepo "slem/internal/domain/repository"
)

type published struct {
	Channel string
	Event   string
	Data    interface{}
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []published
}

func (b *recordingBroadcaster) PublishToUser(userID, event string, data interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, published{Channel: "user:" + userID, Event: event, Data: data})
}

func (b *recordingBroadcaster) PublishToChat(chatID, event string, data interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, published{Channel: "chat:" + chatID, Event: event, Data: data})
}

func (b *recordingBroadcaster) of(event string) []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []published
	for _, e := range b.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type recordingNotifier struct {
	mu     sync.Mutex
	topics []string
}

func (n *recordingNotifier) Notify(ctx context.Context, topic, key string, event interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.topics = append(n.topics, topic)
}

type stubLimiter struct {
	allow bool
}

func (l stubLimiter) Allow(key, action string) (bool, time.Duration) {
	if l.allow {
		return true, 0
	}
	return false, 30 * time.Second
}

type stubTokens struct{}

func (stubTokens) Issue(userID, role string) (string, error) {
	return "token-" + userID, nil
}

// marketplace wires every use case to one in-memory store.
type marketplace struct {
	users    domainrepo.UserRepository
	products domainrepo.ProductRepository
	ledger   domainrepo.StockLedger
	carts    domainrepo.CartRepository
	orders   domainrepo.OrderRepository
	chats    domainrepo.ChatRepository
	reviews  domainrepo.ReviewRepository
	profiles domainrepo.SellerProfileRepository

	broadcaster *recordingBroadcaster
	notifier    *recordingNotifier
}

func newMarketplace() *marketplace {
	store := repository.NewMemoryStore()
	return &marketplace{
		users:       repository.NewMemoryUserRepository(store),
		products:    repository.NewMemoryProductRepository(store),
		ledger:      repository.NewMemoryStockLedger(store),
		carts:       repository.NewMemoryCartRepository(store),
		orders:      repository.NewMemoryOrderRepository(store),
		chats:       repository.NewMemoryChatRepository(store),
		reviews:     repository.NewMemoryReviewRepository(store),
		profiles:    repository.NewMemorySellerProfileRepository(store),
		broadcaster: &recordingBroadcaster{},
		notifier:    &recordingNotifier{},
	}
}

func (m *marketplace) orderUseCase(fee float64) *OrderUseCase {
	return NewOrderUseCase(m.orders, m.products, m.ledger, m.users, m.broadcaster, m.notifier, fee)
}

func (m *marketplace) addUser(t *testing.T, id, role string, addresses ...entity.DeliveryAddress) *entity.User {
	t.Helper()
	user := &entity.User{
		ID:                id,
		FullName:          "User " + id,
		Email:             id + "@example.com",
		Role:              role,
		IsVerifiedSeller:  role == entity.RoleSeller,
		DeliveryAddresses: addresses,
	}
	require.NoError(t, m.users.Create(context.Background(), user))
	return user
}

func (m *marketplace) addProduct(t *testing.T, id, sellerID string, price float64, stock int) *entity.Product {
	t.Helper()
	product := &entity.Product{
		ID:       id,
		SellerID: sellerID,
		Title:    "Product " + id,
		Price:    price,
		Stock:    stock,
		Status:   entity.ProductStatusActive,
	}
	require.NoError(t, m.products.Create(context.Background(), product))
	return product
}

func (m *marketplace) stock(t *testing.T, productID string) int {
	t.Helper()
	p, err := m.products.GetByID(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}
