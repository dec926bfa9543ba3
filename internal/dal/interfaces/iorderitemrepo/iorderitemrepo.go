package iorderitemrepo

import (
	"context"

	"github.com/agronexus/marketplace/internal/service/models/orderitem"
)

// IOrderItemRepository is an interface for order item postgres repository.
type IOrderItemRepository interface {
	BulkInsert(ctx context.Context, items []orderitem.OrderItem) error
	ListByOrderIds(ctx context.Context, orderIds []string) ([]orderitem.OrderItem, error)
}
