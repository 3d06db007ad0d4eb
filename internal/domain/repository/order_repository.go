package repository

import (
	"context"

	"slem/internal/domain/entity"
)

type OrderRepository interface {
	// Create stores the order together with its creation event.
	Create(ctx context.Context, order *entity.Order, event *entity.OrderEvent) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	List(ctx context.Context, filter entity.OrderFilter, limit, offset int) ([]*entity.Order, int64, error)

	// Transition reads the order, lets fn mutate it and build the audit event,
	// then writes both in one atomic step.
	Transition(ctx context.Context, orderID string, fn func(order *entity.Order) (*entity.OrderEvent, error)) (*entity.Order, *entity.OrderEvent, error)

	ListEvents(ctx context.Context, orderID string) ([]*entity.OrderEvent, error)
}
