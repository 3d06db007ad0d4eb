package service

import (
	"fmt"

	"slem/internal/domain/entity"
	"slem/pkg/errors"
)

// progression is the forward lifecycle; Cancelled sits outside it.
var progression = []entity.OrderStatus{
	entity.OrderStatusPending,
	entity.OrderStatusProcessing,
	entity.OrderStatusShipped,
	entity.OrderStatusDelivered,
}

func rank(s entity.OrderStatus) int {
	for i, p := range progression {
		if p == s {
			return i
		}
	}
	return -1
}

func IsValidStatus(s entity.OrderStatus) bool {
	return rank(s) >= 0 || s == entity.OrderStatusCancelled
}

func IsTerminal(s entity.OrderStatus) bool {
	return s == entity.OrderStatusDelivered || s == entity.OrderStatusCancelled
}

// CanTransition allows forward moves along the progression (skips included)
// and cancellation from any non-terminal status.
func CanTransition(from, to entity.OrderStatus) bool {
	if !IsValidStatus(from) || !IsValidStatus(to) || IsTerminal(from) || from == to {
		return false
	}
	if to == entity.OrderStatusCancelled {
		return true
	}
	return rank(to) > rank(from)
}

// AuthorizeTransition checks both the lifecycle rule and who may apply it.
// Sellers and admins drive the lifecycle; a buyer may only cancel before shipping.
func AuthorizeTransition(order *entity.Order, actorID, actorRole string, to entity.OrderStatus) error {
	if !IsValidStatus(to) {
		return errors.Validation(fmt.Sprintf("Unknown order status %q", to))
	}

	isAdmin := actorRole == entity.RoleAdmin
	isSeller := order.SellerID == actorID
	isBuyer := order.BuyerID == actorID

	if !isAdmin && !isSeller && !isBuyer {
		return errors.Forbidden("You are not allowed to update this order", nil)
	}

	if !CanTransition(order.Status, to) {
		return errors.Validation(fmt.Sprintf("Cannot change order status from %s to %s", order.Status, to))
	}

	if isAdmin || isSeller {
		return nil
	}

	if to != entity.OrderStatusCancelled {
		return errors.Forbidden("Buyers may only cancel orders", nil)
	}
	if order.Status != entity.OrderStatusPending && order.Status != entity.OrderStatusProcessing {
		return errors.Forbidden("Order can no longer be cancelled by the buyer", nil)
	}
	return nil
}
