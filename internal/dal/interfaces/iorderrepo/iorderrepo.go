package iorderrepo

import (
	"context"

	"github.com/agronexus/marketplace/internal/service/models/order"
)

// IOrderRepository is an interface for order postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) error
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	UpdateStatus(ctx context.Context, id string, status order.Status) error
	UpdatePaymentStatus(ctx context.Context, id string, status order.PaymentStatus) error
	Delete(ctx context.Context, id string) (bool, error)
}
