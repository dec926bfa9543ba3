package ordersvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agronexus/marketplace/internal/apperrors"
	"github.com/agronexus/marketplace/internal/dal/interfaces/iorderitemrepo"
	"github.com/agronexus/marketplace/internal/dal/interfaces/iorderrepo"
	"github.com/agronexus/marketplace/internal/dal/interfaces/ioutboxrepo"
	"github.com/agronexus/marketplace/internal/dal/interfaces/iproductrepo"
	"github.com/agronexus/marketplace/internal/service/models/checkout"
	"github.com/agronexus/marketplace/internal/service/models/currency"
	"github.com/agronexus/marketplace/internal/service/models/order"
	"github.com/agronexus/marketplace/internal/service/models/orderitem"
	"github.com/agronexus/marketplace/internal/service/models/outbox"
	"github.com/agronexus/marketplace/internal/service/models/product"
)

type fakeOrderRepo struct {
	orders map[string]order.Order
}

func (f *fakeOrderRepo) Insert(_ context.Context, o order.Order) error {
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrderRepo) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	var out []order.Order
	for _, o := range f.orders {
		if len(filter.Ids) > 0 && !contains(filter.Ids, o.ID) {
			continue
		}
		if len(filter.BuyerIds) > 0 && !contains(filter.BuyerIds, o.BuyerID) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id string, status order.Status) error {
	o := f.orders[id]
	o.Status = status
	f.orders[id] = o
	return nil
}

func (f *fakeOrderRepo) UpdatePaymentStatus(_ context.Context, id string, status order.PaymentStatus) error {
	o := f.orders[id]
	o.PaymentStatus = status
	f.orders[id] = o
	return nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, id string) (bool, error) {
	_, ok := f.orders[id]
	delete(f.orders, id)
	return ok, nil
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

type fakeOrderItemRepo struct {
	items []orderitem.OrderItem
}

func (f *fakeOrderItemRepo) BulkInsert(_ context.Context, items []orderitem.OrderItem) error {
	f.items = append(f.items, items...)
	return nil
}

func (f *fakeOrderItemRepo) ListByOrderIds(_ context.Context, orderIds []string) ([]orderitem.OrderItem, error) {
	var out []orderitem.OrderItem
	for _, it := range f.items {
		if contains(orderIds, it.OrderID) {
			out = append(out, it)
		}
	}
	return out, nil
}

type fakeOutboxRepo struct {
	messages []outbox.OutboxMessage
}

func (f *fakeOutboxRepo) Insert(_ context.Context, msg outbox.OutboxMessage) error {
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeOutboxRepo) GetPendingMessages(_ context.Context, _ int) ([]outbox.OutboxMessage, error) {
	return f.messages, nil
}

func (f *fakeOutboxRepo) Delete(_ context.Context, _ int64) error {
	return nil
}

func (f *fakeOutboxRepo) UpdateRetry(_ context.Context, _ int64, _ int, _ string, _ time.Time) error {
	return nil
}

type fakeProductRepo struct {
	quantities map[string]int64
}

func (f *fakeProductRepo) DecrementQuantity(_ context.Context, id string, by int64) error {
	f.quantities[id] -= by
	return nil
}

func (f *fakeProductRepo) Insert(_ context.Context, _ product.Product) error { return nil }

func (f *fakeProductRepo) Update(_ context.Context, _ product.Product) error { return nil }

func (f *fakeProductRepo) Delete(_ context.Context, _ string) (bool, error) { return false, nil }

func (f *fakeProductRepo) Get(_ context.Context, _ string) (*product.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) Query(_ context.Context, _ *product.QueryProductsModel) ([]product.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) Count(_ context.Context, _ *product.QueryProductsModel) (int64, error) {
	return 0, nil
}

func (f *fakeProductRepo) Categories(_ context.Context) ([]string, error) { return nil, nil }

type fakeUOW struct {
	orderRepo     *fakeOrderRepo
	orderItemRepo *fakeOrderItemRepo
	outboxRepo    *fakeOutboxRepo
	productRepo   *fakeProductRepo
	committed     bool
	rolledBack    bool
}

func newFakeUOW() *fakeUOW {
	return &fakeUOW{
		orderRepo:     &fakeOrderRepo{orders: make(map[string]order.Order)},
		orderItemRepo: &fakeOrderItemRepo{},
		outboxRepo:    &fakeOutboxRepo{},
		productRepo:   &fakeProductRepo{quantities: make(map[string]int64)},
	}
}

func (f *fakeUOW) Begin(_ context.Context) error { return nil }

func (f *fakeUOW) Commit(_ context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeUOW) Rollback(_ context.Context) error {
	if !f.committed {
		f.rolledBack = true
	}
	return nil
}

func (f *fakeUOW) OrderRepository() iorderrepo.IOrderRepository {
	return f.orderRepo
}

func (f *fakeUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return f.orderItemRepo
}

func (f *fakeUOW) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return f.outboxRepo
}

func (f *fakeUOW) ProductRepository() iproductrepo.IProductRepository {
	return f.productRepo
}

func newTestService() (*OrderService, *fakeUOW) {
	u := newFakeUOW()
	svc := MustNewOrderService(WithUnitOfWorkFactory(func() unitOfWork { return u }))
	return svc, u
}

func TestCreateOrderComputesTotalOnce(t *testing.T) {
	svc, u := newTestService()

	o, err := svc.CreateOrder(context.Background(), "buyer-1", []ItemInput{
		{ProductID: "p1", ProductName: "Tomatoes", Quantity: 2, UnitPriceCents: 100},
		{ProductID: "p2", ProductName: "Kale", Quantity: 1, UnitPriceCents: 50},
	}, order.CreateOptions{ShippingAddress: "Nairobi"})
	require.NoError(t, err)

	assert.Equal(t, int64(250), o.TotalCents)
	assert.Equal(t, currency.CurrencyKES, o.TotalCurrency)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, order.PaymentStatusPending, o.PaymentStatus)
	assert.Len(t, o.OrderItems, 2)
	assert.True(t, u.committed)
	assert.Len(t, u.outboxRepo.messages, 1)
	assert.Equal(t, outbox.RoutingKeyOrderCreated, u.outboxRepo.messages[0].RoutingKey)
}

func TestCreateOrderDecrementsProductStock(t *testing.T) {
	svc, u := newTestService()
	u.productRepo.quantities["p1"] = 10
	u.productRepo.quantities["p2"] = 3

	_, err := svc.CreateOrder(context.Background(), "buyer-1", []ItemInput{
		{ProductID: "p1", ProductName: "Tomatoes", Quantity: 4, UnitPriceCents: 100},
		{ProductID: "p2", ProductName: "Kale", Quantity: 1, UnitPriceCents: 50},
	}, order.CreateOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(6), u.productRepo.quantities["p1"])
	assert.Equal(t, int64(2), u.productRepo.quantities["p2"])
	assert.True(t, u.committed)
}

func TestCreateFromSnapshotDecrementsProductStock(t *testing.T) {
	svc, u := newTestService()
	u.productRepo.quantities["p1"] = 10

	snap := checkout.NewSnapshot("buyer-1", []checkout.LineItem{
		{ProductID: "p1", ProductName: "Tomatoes", Quantity: 4, UnitPriceCents: 80},
	}, currency.CurrencyKES)

	_, err := svc.CreateFromSnapshot(context.Background(), snap, order.CreateOptions{})
	require.NoError(t, err)

	assert.Equal(t, int64(6), u.productRepo.quantities["p1"])
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	svc, u := newTestService()

	_, err := svc.CreateOrder(context.Background(), "buyer-1", nil, order.CreateOptions{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.False(t, u.committed)
}

func TestCreateFromSnapshotUsesSnapshotTotal(t *testing.T) {
	svc, _ := newTestService()

	snap := checkout.NewSnapshot("buyer-1", []checkout.LineItem{
		{ProductID: "p1", ProductName: "Tomatoes", Quantity: 3, UnitPriceCents: 80},
	}, currency.CurrencyKES)

	o, err := svc.CreateFromSnapshot(context.Background(), snap, order.CreateOptions{})
	require.NoError(t, err)
	assert.Equal(t, snap.TotalCents, o.TotalCents)
}

func TestUpdateStatusLegalEdge(t *testing.T) {
	svc, u := newTestService()

	o, err := svc.CreateOrder(context.Background(), "buyer-1", []ItemInput{
		{ProductID: "p1", Quantity: 1, UnitPriceCents: 100},
	}, order.CreateOptions{})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), o.ID, order.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, updated.Status)
	assert.Equal(t, order.StatusConfirmed, u.orderRepo.orders[o.ID].Status)
}

func TestUpdateStatusIllegalEdge(t *testing.T) {
	svc, _ := newTestService()

	o, err := svc.CreateOrder(context.Background(), "buyer-1", []ItemInput{
		{ProductID: "p1", Quantity: 1, UnitPriceCents: 100},
	}, order.CreateOptions{})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), o.ID, order.StatusDelivered)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateStatus(context.Background(), "missing", order.StatusConfirmed)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCancelBeforeShipping(t *testing.T) {
	svc, _ := newTestService()

	o, err := svc.CreateOrder(context.Background(), "buyer-1", []ItemInput{
		{ProductID: "p1", Quantity: 1, UnitPriceCents: 100},
	}, order.CreateOptions{})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), "buyer-1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)
}

func TestCancelAfterShippingRejected(t *testing.T) {
	svc, _ := newTestService()

	o, err := svc.CreateOrder(context.Background(), "buyer-1", []ItemInput{
		{ProductID: "p1", Quantity: 1, UnitPriceCents: 100},
	}, order.CreateOptions{})
	require.NoError(t, err)

	for _, next := range []order.Status{order.StatusConfirmed, order.StatusProcessing, order.StatusShipped} {
		_, err = svc.UpdateStatus(context.Background(), o.ID, next)
		require.NoError(t, err)
	}

	_, err = svc.Cancel(context.Background(), "buyer-1", o.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestCancelByAnotherBuyer(t *testing.T) {
	svc, _ := newTestService()

	o, err := svc.CreateOrder(context.Background(), "buyer-1", []ItemInput{
		{ProductID: "p1", Quantity: 1, UnitPriceCents: 100},
	}, order.CreateOptions{})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), "buyer-2", o.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdatePaymentStatusLegalEdges(t *testing.T) {
	svc, u := newTestService()

	o, err := svc.CreateOrder(context.Background(), "buyer-1", []ItemInput{
		{ProductID: "p1", Quantity: 1, UnitPriceCents: 100},
	}, order.CreateOptions{})
	require.NoError(t, err)

	paid, err := svc.UpdatePaymentStatus(context.Background(), o.ID, order.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusPaid, paid.PaymentStatus)

	refunded, err := svc.UpdatePaymentStatus(context.Background(), o.ID, order.PaymentStatusRefunded)
	require.NoError(t, err)
	assert.Equal(t, order.PaymentStatusRefunded, refunded.PaymentStatus)

	_, err = svc.UpdatePaymentStatus(context.Background(), o.ID, order.PaymentStatusPending)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	// One created event plus one status-changed event per legal edge.
	require.Len(t, u.outboxRepo.messages, 3)
	assert.Equal(t, outbox.RoutingKeyOrderStatusChanged, u.outboxRepo.messages[1].RoutingKey)
	assert.Equal(t, outbox.RoutingKeyOrderStatusChanged, u.outboxRepo.messages[2].RoutingKey)
}

func TestGetOrdersAttachesItems(t *testing.T) {
	svc, _ := newTestService()

	o, err := svc.CreateOrder(context.Background(), "buyer-1", []ItemInput{
		{ProductID: "p1", ProductName: "Tomatoes", Quantity: 2, UnitPriceCents: 100},
	}, order.CreateOptions{})
	require.NoError(t, err)

	orders, err := svc.GetOrders(context.Background(), &order.QueryOrdersModel{BuyerIds: []string{"buyer-1"}})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].OrderItems, 1)
	assert.Equal(t, o.ID, orders[0].OrderItems[0].OrderID)
	assert.Equal(t, "Tomatoes", orders[0].OrderItems[0].ProductName)
}
