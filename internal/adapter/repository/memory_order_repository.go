package repository

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/pkg/errors"
)

type memoryOrderRepository struct {
	store *MemoryStore
}

func NewMemoryOrderRepository(store *MemoryStore) repository.OrderRepository {
	return &memoryOrderRepository{store: store}
}

func (r *memoryOrderRepository) Create(ctx context.Context, order *entity.Order, event *entity.OrderEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.store.orders[order.ID] = cloneOrder(order)

	if event != nil {
		r.appendEvent(order.ID, event, now)
	}
	return nil
}

func (r *memoryOrderRepository) appendEvent(orderID string, event *entity.OrderEvent, at time.Time) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	event.OrderID = orderID
	event.CreatedAt = at
	r.store.events[orderID] = append(r.store.events[orderID], cloneEvent(event))
}

func (r *memoryOrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	o, ok := r.store.orders[id]
	if !ok {
		return nil, errors.NotFound("Order", nil)
	}
	return cloneOrder(o), nil
}

func (r *memoryOrderRepository) List(ctx context.Context, filter entity.OrderFilter, limit, offset int) ([]*entity.Order, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var orders []*entity.Order
	for _, o := range r.store.orders {
		if filter.BuyerID != "" && o.BuyerID != filter.BuyerID {
			continue
		}
		if filter.SellerID != "" && o.SellerID != filter.SellerID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		orders = append(orders, cloneOrder(o))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })

	return paginate(orders, limit, offset), int64(len(orders)), nil
}

func (r *memoryOrderRepository) Transition(ctx context.Context, orderID string, fn func(order *entity.Order) (*entity.OrderEvent, error)) (*entity.Order, *entity.OrderEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.orders[orderID]
	if !ok {
		return nil, nil, errors.NotFound("Order", nil)
	}

	order := cloneOrder(current)
	event, err := fn(order)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	order.UpdatedAt = now
	r.store.orders[orderID] = cloneOrder(order)
	if event != nil {
		r.appendEvent(orderID, event, now)
	}
	return order, event, nil
}

func (r *memoryOrderRepository) ListEvents(ctx context.Context, orderID string) ([]*entity.OrderEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	events := make([]*entity.OrderEvent, 0, len(r.store.events[orderID]))
	for _, e := range r.store.events[orderID] {
		events = append(events, cloneEvent(e))
	}
	return events, nil
}
