package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/pkg/errors"
)

type firestoreOrderRepository struct {
	client *firestore.Client
}

func NewFirestoreOrderRepository(client *firestore.Client) repository.OrderRepository {
	return &firestoreOrderRepository{
		client: client,
	}
}

func (r *firestoreOrderRepository) events(orderID string) *firestore.CollectionRef {
	return r.client.Collection("orders").Doc(orderID).Collection("events")
}

func (r *firestoreOrderRepository) Create(ctx context.Context, order *entity.Order, event *entity.OrderEvent) error {
	orderRef := r.client.Collection("orders").NewDoc()
	if order.ID != "" {
		orderRef = r.client.Collection("orders").Doc(order.ID)
	}
	order.ID = orderRef.ID

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	batch := r.client.Batch()
	batch.Create(orderRef, order)
	if event != nil {
		eventRef := r.events(order.ID).NewDoc()
		event.ID = eventRef.ID
		event.OrderID = order.ID
		event.CreatedAt = now
		batch.Create(eventRef, event)
	}

	if _, err := batch.Commit(ctx); err != nil {
		return errors.Internal("Failed to create order", err)
	}
	return nil
}

func (r *firestoreOrderRepository) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	doc, err := r.client.Collection("orders").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Order", err)
		}
		return nil, errors.Internal("Failed to get order", err)
	}

	var order entity.Order
	if err := doc.DataTo(&order); err != nil {
		return nil, errors.Internal("Failed to parse order data", err)
	}
	return &order, nil
}

func (r *firestoreOrderRepository) List(ctx context.Context, filter entity.OrderFilter, limit, offset int) ([]*entity.Order, int64, error) {
	query := r.client.Collection("orders").Query
	if filter.BuyerID != "" {
		query = query.Where("buyerId", "==", filter.BuyerID)
	}
	if filter.SellerID != "" {
		query = query.Where("sellerId", "==", filter.SellerID)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count orders", err)
	}
	total := int64(len(countDocs))

	query = query.OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var orders []*entity.Order
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate orders", err)
		}

		var order entity.Order
		if err := doc.DataTo(&order); err != nil {
			return nil, 0, errors.Internal("Failed to parse order data", err)
		}
		orders = append(orders, &order)
	}

	return orders, total, nil
}

func (r *firestoreOrderRepository) Transition(ctx context.Context, orderID string, fn func(order *entity.Order) (*entity.OrderEvent, error)) (*entity.Order, *entity.OrderEvent, error) {
	ref := r.client.Collection("orders").Doc(orderID)
	var (
		updated *entity.Order
		event   *entity.OrderEvent
	)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return errors.NotFound("Order", err)
			}
			return err
		}

		var order entity.Order
		if err := doc.DataTo(&order); err != nil {
			return err
		}

		ev, err := fn(&order)
		if err != nil {
			return err
		}

		now := time.Now()
		order.UpdatedAt = now
		if err := tx.Set(ref, &order); err != nil {
			return err
		}
		if ev != nil {
			eventRef := r.events(orderID).NewDoc()
			ev.ID = eventRef.ID
			ev.OrderID = orderID
			ev.CreatedAt = now
			if err := tx.Create(eventRef, ev); err != nil {
				return err
			}
		}

		updated = &order
		event = ev
		return nil
	})
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, nil, err
		}
		return nil, nil, errors.Internal("Failed to update order", err)
	}

	return updated, event, nil
}

func (r *firestoreOrderRepository) ListEvents(ctx context.Context, orderID string) ([]*entity.OrderEvent, error) {
	iter := r.events(orderID).OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var events []*entity.OrderEvent
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate order events", err)
		}

		var event entity.OrderEvent
		if err := doc.DataTo(&event); err != nil {
			return nil, errors.Internal("Failed to parse order event", err)
		}
		events = append(events, &event)
	}
	return events, nil
}
