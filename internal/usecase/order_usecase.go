package usecase

import (
	"context"
	"fmt"
	"strings"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/internal/domain/service"
	"slem/internal/infrastructure/messaging"
	"slem/internal/infrastructure/websocket"
	"slem/pkg/errors"
	"slem/pkg/logger"
)

type OrderUseCase struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	ledger      repository.StockLedger
	userRepo    repository.UserRepository
	broadcaster Broadcaster
	notifier    Notifier
	deliveryFee float64
}

func NewOrderUseCase(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	ledger repository.StockLedger,
	userRepo repository.UserRepository,
	broadcaster Broadcaster,
	notifier Notifier,
	deliveryFee float64,
) *OrderUseCase {
	return &OrderUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		ledger:      ledger,
		userRepo:    userRepo,
		broadcaster: broadcaster,
		notifier:    notifier,
		deliveryFee: deliveryFee,
	}
}

type OrderLineInput struct {
	ProductID string
	Quantity  int
}

type PlaceOrderInput struct {
	SellerID        string
	Items           []OrderLineInput
	DeliveryAddress string
	PaymentMethod   string
}

type OrderCreatedEvent struct {
	OrderID  string        `json:"orderId"`
	BuyerID  string        `json:"buyerId"`
	SellerID string        `json:"sellerId"`
	Order    *entity.Order `json:"order"`
}

type OrderUpdatedEvent struct {
	OrderID string             `json:"orderId"`
	From    entity.OrderStatus `json:"from"`
	Status  entity.OrderStatus `json:"status"`
	Order   *entity.Order      `json:"order"`
}

type orderNotification struct {
	OrderID  string             `json:"orderId"`
	BuyerID  string             `json:"buyerId"`
	SellerID string             `json:"sellerId"`
	Status   entity.OrderStatus `json:"status"`
	Total    float64            `json:"total"`
	ActorID  string             `json:"actorId"`
}

// PlaceOrder reserves stock for every line, freezes prices and records the
// order with its creation event. Broadcasts happen only after both landed.
func (uc *OrderUseCase) PlaceOrder(ctx context.Context, buyerID string, input PlaceOrderInput) (*entity.Order, error) {
	if err := validateOrderLines(input); err != nil {
		return nil, err
	}
	if input.SellerID == buyerID {
		return nil, errors.BadRequest("You cannot order your own products", nil)
	}

	payment := input.PaymentMethod
	if payment == "" {
		payment = entity.PaymentCOD
	}
	if payment != entity.PaymentCOD && payment != entity.PaymentMobileMoney {
		return nil, errors.Validation(fmt.Sprintf("Unsupported payment method %q", payment))
	}

	address, err := uc.resolveDeliveryAddress(ctx, buyerID, input.DeliveryAddress)
	if err != nil {
		return nil, err
	}

	demands := make([]repository.StockDemand, len(input.Items))
	for i, line := range input.Items {
		demands[i] = repository.StockDemand{ProductID: line.ProductID, Quantity: line.Quantity}
	}

	products, err := uc.ledger.Reserve(ctx, input.SellerID, demands)
	if err != nil {
		return nil, err
	}

	order := &entity.Order{
		BuyerID:         buyerID,
		SellerID:        input.SellerID,
		Items:           make([]entity.OrderItem, len(input.Items)),
		DeliveryAddress: address,
		PaymentMethod:   payment,
		DeliveryFee:     uc.deliveryFee,
		Status:          entity.OrderStatusPending,
	}
	for i, line := range input.Items {
		p := products[i]
		lineTotal := p.Price * float64(line.Quantity)
		order.Items[i] = entity.OrderItem{
			ProductID: p.ID,
			Title:     p.Title,
			Quantity:  line.Quantity,
			UnitPrice: p.Price,
			LineTotal: lineTotal,
		}
		order.Subtotal += lineTotal
	}
	order.Total = order.Subtotal + order.DeliveryFee

	event := &entity.OrderEvent{
		To:      entity.OrderStatusPending,
		ActorID: buyerID,
		Type:    entity.OrderEventCreated,
	}
	if err := uc.orderRepo.Create(ctx, order, event); err != nil {
		if relErr := uc.ledger.Release(ctx, demands); relErr != nil {
			logger.LogOrderEventError("", "release-after-failed-create", relErr)
		}
		return nil, err
	}

	logger.Info("Order created: %s", order.ID)

	payload := OrderCreatedEvent{OrderID: order.ID, BuyerID: buyerID, SellerID: order.SellerID, Order: order}
	uc.broadcaster.PublishToUser(order.SellerID, websocket.MessageTypeOrderCreated, payload)
	uc.broadcaster.PublishToUser(buyerID, websocket.MessageTypeOrderCreated, payload)

	uc.notifier.Notify(ctx, messaging.TopicOrderCreated, order.ID, orderNotification{
		OrderID:  order.ID,
		BuyerID:  buyerID,
		SellerID: order.SellerID,
		Status:   order.Status,
		Total:    order.Total,
		ActorID:  buyerID,
	})

	return order, nil
}

func validateOrderLines(input PlaceOrderInput) error {
	if input.SellerID == "" {
		return errors.Validation("sellerId is required")
	}
	if len(input.Items) == 0 {
		return errors.Validation("Order must contain at least one item")
	}

	seen := make(map[string]bool, len(input.Items))
	for _, line := range input.Items {
		if line.ProductID == "" {
			return errors.Validation("productId is required")
		}
		if line.Quantity < 1 {
			return errors.Validation("Quantity must be at least 1")
		}
		if seen[line.ProductID] {
			return errors.Validation("Each product may appear only once per order")
		}
		seen[line.ProductID] = true
	}
	return nil
}

func (uc *OrderUseCase) resolveDeliveryAddress(ctx context.Context, buyerID, address string) (string, error) {
	address = strings.TrimSpace(address)
	if address != "" {
		if !service.IsDeliverableAddress(address) {
			return "", errors.Validation("Address must include a valid district or city in Sierra Leone")
		}
		return address, nil
	}

	buyer, err := uc.userRepo.GetByID(ctx, buyerID)
	if err != nil {
		return "", err
	}
	def, ok := buyer.DefaultAddress()
	if !ok {
		return "", errors.Validation("deliveryAddress is required when no default address is saved")
	}
	return def.Details, nil
}

// UpdateStatus applies one lifecycle transition. The order and its event are
// written together; restock and sales counters follow.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, actorID, actorRole, orderID string, to entity.OrderStatus) (*entity.Order, error) {
	var from entity.OrderStatus
	order, _, err := uc.orderRepo.Transition(ctx, orderID, func(order *entity.Order) (*entity.OrderEvent, error) {
		if err := service.AuthorizeTransition(order, actorID, actorRole, to); err != nil {
			return nil, err
		}
		from = order.Status
		order.Status = to

		prev := from
		return &entity.OrderEvent{
			From:    &prev,
			To:      to,
			ActorID: actorID,
			Type:    entity.OrderEventStatusChanged,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Order %s updated from %s to %s by %s", orderID, from, to, actorID)

	switch to {
	case entity.OrderStatusCancelled:
		if err := uc.ledger.Release(ctx, orderDemands(order)); err != nil {
			logger.LogOrderEventError(orderID, "restock", err)
		}
	case entity.OrderStatusDelivered:
		for _, item := range order.Items {
			if err := uc.productRepo.IncrementSales(ctx, item.ProductID, item.Quantity); err != nil {
				logger.LogOrderEventError(orderID, "sales-counter", err)
			}
		}
	}

	payload := OrderUpdatedEvent{OrderID: orderID, From: from, Status: to, Order: order}
	uc.broadcaster.PublishToUser(order.SellerID, websocket.MessageTypeOrderUpdated, payload)
	uc.broadcaster.PublishToUser(order.BuyerID, websocket.MessageTypeOrderUpdated, payload)

	uc.notifier.Notify(ctx, messaging.TopicOrderStatusChanged, orderID, orderNotification{
		OrderID:  orderID,
		BuyerID:  order.BuyerID,
		SellerID: order.SellerID,
		Status:   to,
		Total:    order.Total,
		ActorID:  actorID,
	})

	return order, nil
}

func orderDemands(order *entity.Order) []repository.StockDemand {
	demands := make([]repository.StockDemand, len(order.Items))
	for i, item := range order.Items {
		demands[i] = repository.StockDemand{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return demands
}

func (uc *OrderUseCase) GetOrder(ctx context.Context, actorID, actorRole, orderID string) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actorRole != entity.RoleAdmin && order.BuyerID != actorID && order.SellerID != actorID {
		return nil, errors.Forbidden("You are not allowed to view this order", nil)
	}
	return order, nil
}

func (uc *OrderUseCase) ListOrderEvents(ctx context.Context, actorID, actorRole, orderID string) ([]*entity.OrderEvent, error) {
	if _, err := uc.GetOrder(ctx, actorID, actorRole, orderID); err != nil {
		return nil, err
	}
	return uc.orderRepo.ListEvents(ctx, orderID)
}

func (uc *OrderUseCase) ListOrders(ctx context.Context, filter entity.OrderFilter, page, limit int) ([]*entity.Order, int64, error) {
	if filter.Status != "" && !service.IsValidStatus(filter.Status) {
		return nil, 0, errors.Validation(fmt.Sprintf("Unknown order status %q", filter.Status))
	}

	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return uc.orderRepo.List(ctx, filter, limit, offset)
}
