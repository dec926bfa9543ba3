package ordersvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agronexus/marketplace/internal/apperrors"
	"github.com/agronexus/marketplace/internal/dal/interfaces/iorderitemrepo"
	"github.com/agronexus/marketplace/internal/dal/interfaces/iorderrepo"
	"github.com/agronexus/marketplace/internal/dal/interfaces/ioutboxrepo"
	"github.com/agronexus/marketplace/internal/dal/interfaces/iproductrepo"
	"github.com/agronexus/marketplace/internal/dal/postgres"
	"github.com/agronexus/marketplace/internal/dal/uow"
	"github.com/agronexus/marketplace/internal/service/models/checkout"
	"github.com/agronexus/marketplace/internal/service/models/currency"
	"github.com/agronexus/marketplace/internal/service/models/order"
	"github.com/agronexus/marketplace/internal/service/models/orderitem"
	"github.com/agronexus/marketplace/internal/service/models/outbox"
)

// unitOfWork scopes the checkout repositories to one transaction.
type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
	ProductRepository() iproductrepo.IProductRepository
}

// OrderService owns the order lifecycle: transactional creation from a priced
// snapshot and the enforced fulfillment and payment status machines.
type OrderService struct {
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	newUOW        func() unitOfWork
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.orderRepo == nil || s.orderItemRepo == nil || s.newUOW == nil {
		panic("ordersvc: repositories and a unit of work factory are required")
	}

	return s
}

// WithPostgresClient builds the repositories and unit of work from the
// Postgres client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		base := uow.NewUnitOfWork(pgClient)
		s.orderRepo = base.OrderRepository()
		s.orderItemRepo = base.OrderItemRepository()
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithUnitOfWorkFactory sets the repositories and transaction factory
// directly.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *OrderService) {
		base := factory()
		s.orderRepo = base.OrderRepository()
		s.orderItemRepo = base.OrderItemRepository()
		s.newUOW = factory
	}
}

// ItemInput is one requested order line. The unit price is the locked price
// from the cart, not a live catalog lookup.
type ItemInput struct {
	ProductID      string
	ProductName    string
	Quantity       int64
	UnitPriceCents int64
}

// CreateOrder creates an order with its items and an order.created event in
// one transaction. The total is computed here, once, from the given lines.
func (s *OrderService) CreateOrder(ctx context.Context, buyerID string, items []ItemInput, opts order.CreateOptions) (*order.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", apperrors.ErrValidation)
	}

	var total int64
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: item quantity must be at least 1", apperrors.ErrValidation)
		}
		total += it.Quantity * it.UnitPriceCents
	}

	now := time.Now()
	o := order.Order{
		ID:              uuid.NewString(),
		BuyerID:         buyerID,
		Status:          order.StatusPending,
		PaymentStatus:   order.PaymentStatusPending,
		TotalCents:      total,
		TotalCurrency:   currency.CurrencyKES,
		PaymentMethod:   opts.PaymentMethod,
		ShippingAddress: opts.ShippingAddress,
		DeliveryNotes:   opts.DeliveryNotes,
		PhoneNumber:     opts.PhoneNumber,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	orderItems := make([]orderitem.OrderItem, 0, len(items))
	for _, it := range items {
		orderItems = append(orderItems, orderitem.OrderItem{
			ID:             uuid.NewString(),
			OrderID:        o.ID,
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			PriceCurrency:  currency.CurrencyKES,
			CreatedAt:      now,
		})
	}
	o.OrderItems = orderItems

	event, err := outbox.NewEvent(outbox.RoutingKeyOrderCreated, o)
	if err != nil {
		return nil, err
	}

	u := s.newUOW()
	if err := u.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer u.Rollback(ctx)

	if err := u.OrderRepository().Insert(ctx, o); err != nil {
		return nil, err
	}

	if err := u.OrderItemRepository().BulkInsert(ctx, orderItems); err != nil {
		return nil, err
	}

	for _, it := range items {
		if err := u.ProductRepository().DecrementQuantity(ctx, it.ProductID, it.Quantity); err != nil {
			return nil, err
		}
	}

	if err := u.OutboxRepository().Insert(ctx, event); err != nil {
		return nil, err
	}

	if err := u.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &o, nil
}

// CreateFromSnapshot creates an order from a checkout snapshot, reusing the
// snapshot's already-priced lines.
func (s *OrderService) CreateFromSnapshot(ctx context.Context, snap *checkout.Snapshot, opts order.CreateOptions) (*order.Order, error) {
	items := make([]ItemInput, 0, len(snap.Items))
	for _, line := range snap.Items {
		items = append(items, ItemInput{
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		})
	}

	return s.CreateOrder(ctx, snap.UserID, items, opts)
}

// GetOrders retrieves orders matching the filter with their items attached.
func (s *OrderService) GetOrders(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	orders, err := s.orderRepo.Query(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	items, err := s.orderItemRepo.ListByOrderIds(ctx, ids)
	if err != nil {
		return nil, err
	}

	byOrder := make(map[string][]orderitem.OrderItem, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	for i := range orders {
		orders[i].OrderItems = byOrder[orders[i].ID]
	}

	return orders, nil
}

// GetOrder retrieves one order with items, nil when absent.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	orders, err := s.GetOrders(ctx, &order.QueryOrdersModel{Ids: []string{id}})
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}

	return &orders[0], nil
}

// UpdateStatus moves the fulfillment status along a legal edge and records a
// status-changed event in the same transaction.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, next order.Status) (*order.Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: order %s", apperrors.ErrNotFound, id)
	}

	if !o.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: order status cannot change from %s to %s", apperrors.ErrInvalidTransition, o.Status, next)
	}

	event, err := outbox.NewEvent(outbox.RoutingKeyOrderStatusChanged, map[string]any{
		"order_id": o.ID,
		"from":     o.Status,
		"to":       next,
	})
	if err != nil {
		return nil, err
	}

	u := s.newUOW()
	if err := u.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer u.Rollback(ctx)

	if err := u.OrderRepository().UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}

	if err := u.OutboxRepository().Insert(ctx, event); err != nil {
		return nil, err
	}

	if err := u.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("order status changed", "order_id", o.ID, "from", o.Status.String(), "to", next.String())

	o.Status = next
	o.UpdatedAt = time.Now()

	return o, nil
}

// UpdatePaymentStatus moves the payment status along a legal edge and records
// the status-changed event in the same transaction as the write.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id string, next order.PaymentStatus) (*order.Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: order %s", apperrors.ErrNotFound, id)
	}

	if !o.PaymentStatus.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: order payment status cannot change from %s to %s", apperrors.ErrInvalidTransition, o.PaymentStatus, next)
	}

	event, err := outbox.NewEvent(outbox.RoutingKeyOrderStatusChanged, map[string]any{
		"order_id":            o.ID,
		"payment_status_from": o.PaymentStatus,
		"payment_status_to":   next,
	})
	if err != nil {
		return nil, err
	}

	u := s.newUOW()
	if err := u.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	//goland:noinspection GoUnhandledErrorResult
	defer u.Rollback(ctx)

	if err := u.OrderRepository().UpdatePaymentStatus(ctx, id, next); err != nil {
		return nil, err
	}

	if err := u.OutboxRepository().Insert(ctx, event); err != nil {
		return nil, err
	}

	if err := u.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("order payment status changed", "order_id", o.ID, "from", o.PaymentStatus.String(), "to", next.String())

	o.PaymentStatus = next
	o.UpdatedAt = time.Now()

	return o, nil
}

// Cancel cancels an order on behalf of its buyer. Orders that have shipped
// can no longer be cancelled; the transition table enforces that.
func (s *OrderService) Cancel(ctx context.Context, buyerID, id string) (*order.Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil || o.BuyerID != buyerID {
		return nil, fmt.Errorf("%w: order %s", apperrors.ErrNotFound, id)
	}

	return s.UpdateStatus(ctx, id, order.StatusCancelled)
}

// Delete removes an order record entirely.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	deleted, err := s.orderRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: order %s", apperrors.ErrNotFound, id)
	}

	return nil
}
