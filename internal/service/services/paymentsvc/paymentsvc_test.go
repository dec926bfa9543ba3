package paymentsvc

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agronexus/marketplace/internal/apperrors"
	"github.com/agronexus/marketplace/internal/dal/interfaces/ioutboxrepo"
	"github.com/agronexus/marketplace/internal/dal/interfaces/ipaymentrepo"
	"github.com/agronexus/marketplace/internal/gateway"
	"github.com/agronexus/marketplace/internal/service/models/checkout"
	"github.com/agronexus/marketplace/internal/service/models/currency"
	"github.com/agronexus/marketplace/internal/service/models/order"
	"github.com/agronexus/marketplace/internal/service/models/outbox"
	"github.com/agronexus/marketplace/internal/service/models/payment"
)

type fakePaymentRepo struct {
	payments map[string]payment.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]payment.Payment)}
}

func (f *fakePaymentRepo) Insert(_ context.Context, p payment.Payment) error {
	f.payments[p.ID] = p
	return nil
}

func (f *fakePaymentRepo) Update(_ context.Context, p payment.Payment) error {
	f.payments[p.ID] = p
	return nil
}

func (f *fakePaymentRepo) Get(_ context.Context, id string) (*payment.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakePaymentRepo) ListPendingBefore(_ context.Context, cutoff time.Time, _ int) ([]payment.Payment, error) {
	var out []payment.Payment
	for _, p := range f.payments {
		if p.Status == payment.StatusPending && p.CreatedAt.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) Stats(_ context.Context) (*payment.Stats, error) {
	stats := &payment.Stats{CountByStatus: make(map[payment.Status]int64)}
	for _, p := range f.payments {
		stats.CountByStatus[p.Status]++
		if p.Status == payment.StatusCompleted {
			stats.CompletedAmountCents += p.AmountCents
		}
	}
	return stats, nil
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

func (f *fakeOutboxRepo) Delete(_ context.Context, _ int64) error { return nil }

func (f *fakeOutboxRepo) UpdateRetry(_ context.Context, _ int64, _ int, _ string, _ time.Time) error {
	return nil
}

type fakeUOW struct {
	paymentRepo *fakePaymentRepo
	outboxRepo  *fakeOutboxRepo
	committed   bool
}

func (f *fakeUOW) Begin(_ context.Context) error { return nil }

func (f *fakeUOW) Commit(_ context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeUOW) Rollback(_ context.Context) error { return nil }

func (f *fakeUOW) PaymentRepository() ipaymentrepo.IPaymentRepository {
	return f.paymentRepo
}

func (f *fakeUOW) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return f.outboxRepo
}

type fakeCarts struct {
	snapshot *checkout.Snapshot
	cleared  bool
}

func (f *fakeCarts) Snapshot(_ context.Context, _ string) (*checkout.Snapshot, error) {
	if f.snapshot == nil {
		return nil, fmt.Errorf("%w: cart is empty", apperrors.ErrValidation)
	}
	return f.snapshot, nil
}

func (f *fakeCarts) Clear(_ context.Context, _ string) error {
	f.cleared = true
	return nil
}

type fakeOrders struct {
	created        *order.Order
	paymentUpdates []order.PaymentStatus
	updateErr      error
}

func (f *fakeOrders) CreateFromSnapshot(_ context.Context, snap *checkout.Snapshot, opts order.CreateOptions) (*order.Order, error) {
	f.created = &order.Order{
		ID:            "order-1",
		BuyerID:       snap.UserID,
		Status:        order.StatusPending,
		PaymentStatus: order.PaymentStatusPending,
		TotalCents:    snap.TotalCents,
		TotalCurrency: snap.Currency,
		PaymentMethod: opts.PaymentMethod,
	}
	return f.created, nil
}

func (f *fakeOrders) UpdatePaymentStatus(_ context.Context, _ string, next order.PaymentStatus) (*order.Order, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.paymentUpdates = append(f.paymentUpdates, next)
	return f.created, nil
}

type countingGateway struct {
	inner   gateway.PaymentGateway
	charges int
	err     error
}

func (g *countingGateway) SubmitCharge(ctx context.Context, req gateway.ChargeRequest) (gateway.ChargeResponse, error) {
	g.charges++
	if g.err != nil {
		return gateway.ChargeResponse{}, g.err
	}
	return g.inner.SubmitCharge(ctx, req)
}

func (g *countingGateway) QueryStatus(ctx context.Context, id string) (gateway.Status, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.inner.QueryStatus(ctx, id)
}

func testSnapshot() *checkout.Snapshot {
	return checkout.NewSnapshot("user-1", []checkout.LineItem{
		{ProductID: "p1", ProductName: "Tomatoes", Quantity: 2, UnitPriceCents: 100},
	}, currency.CurrencyKES)
}

func newTestService(carts *fakeCarts, orders *fakeOrders, gw gateway.PaymentGateway) (*PaymentService, *fakePaymentRepo, *fakeOutboxRepo) {
	paymentRepo := newFakePaymentRepo()
	outboxRepo := &fakeOutboxRepo{}
	u := &fakeUOW{paymentRepo: paymentRepo, outboxRepo: outboxRepo}
	svc := MustNewPaymentService(
		WithRepository(paymentRepo),
		WithUnitOfWorkFactory(func() unitOfWork { return u }),
		WithGateway(gw),
		WithCartService(carts),
		WithOrderService(orders),
	)
	return svc, paymentRepo, outboxRepo
}

func TestInitiateFromCartEmptyCartSkipsGateway(t *testing.T) {
	gw := &countingGateway{inner: gateway.NewSimulator(1)}
	svc, _, _ := newTestService(&fakeCarts{}, &fakeOrders{}, gw)

	_, err := svc.InitiateFromCart(context.Background(), "user-1", payment.MethodMobileMoney, Contact{Phone: "0712345678"})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Zero(t, gw.charges)
}

func TestInitiateFromCartNormalizesPhone(t *testing.T) {
	svc, repo, _ := newTestService(&fakeCarts{snapshot: testSnapshot()}, &fakeOrders{}, gateway.NewSimulator(1))

	p, err := svc.InitiateFromCart(context.Background(), "user-1", payment.MethodMobileMoney, Contact{Phone: "0712345678"})
	require.NoError(t, err)

	assert.Equal(t, "254712345678", p.Phone)
	assert.Equal(t, payment.StatusPending, p.Status)
	assert.NotEmpty(t, p.GatewayPaymentID)
	assert.NotEmpty(t, p.CheckoutURL)
	assert.Equal(t, int64(200), p.AmountCents)

	stored, err := repo.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "254712345678", stored.Phone)
}

func TestInitiateFromCartInvalidPhoneSkipsGateway(t *testing.T) {
	gw := &countingGateway{inner: gateway.NewSimulator(1)}
	svc, _, _ := newTestService(&fakeCarts{snapshot: testSnapshot()}, &fakeOrders{}, gw)

	_, err := svc.InitiateFromCart(context.Background(), "user-1", payment.MethodMobileMoney, Contact{Phone: "12345"})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Zero(t, gw.charges)
}

func TestInitiateFromCartCardRequiresEmail(t *testing.T) {
	svc, _, _ := newTestService(&fakeCarts{snapshot: testSnapshot()}, &fakeOrders{}, gateway.NewSimulator(1))

	_, err := svc.InitiateFromCart(context.Background(), "user-1", payment.MethodCard, Contact{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestInitiateFromCartGatewayFailureMarksRecordFailed(t *testing.T) {
	gw := &countingGateway{
		inner: gateway.NewSimulator(1),
		err:   fmt.Errorf("%w: connection refused", apperrors.ErrGatewayUnavailable),
	}
	svc, repo, _ := newTestService(&fakeCarts{snapshot: testSnapshot()}, &fakeOrders{}, gw)

	_, err := svc.InitiateFromCart(context.Background(), "user-1", payment.MethodMobileMoney, Contact{Phone: "0712345678"})
	require.ErrorIs(t, err, apperrors.ErrGatewayUnavailable)

	require.Len(t, repo.payments, 1)
	for _, p := range repo.payments {
		assert.Equal(t, payment.StatusFailed, p.Status)
		assert.NotEmpty(t, p.FailureReason)
	}
}

func TestCheckStatusCompletesAndReconcilesOrder(t *testing.T) {
	sim := gateway.NewSimulator(1)
	carts := &fakeCarts{snapshot: testSnapshot()}
	orders := &fakeOrders{}
	svc, _, outboxRepo := newTestService(carts, orders, sim)

	result, err := svc.Checkout(context.Background(), "user-1", payment.MethodMobileMoney, Contact{Phone: "0712345678"}, order.CreateOptions{})
	require.NoError(t, err)
	require.NotNil(t, result.Order)
	assert.True(t, carts.cleared)
	assert.Equal(t, result.Order.TotalCents, result.Payment.AmountCents)

	checked, err := svc.CheckStatus(context.Background(), result.Payment.ID)
	require.NoError(t, err)

	assert.Equal(t, payment.StatusCompleted, checked.Status)
	require.Len(t, orders.paymentUpdates, 1)
	assert.Equal(t, order.PaymentStatusPaid, orders.paymentUpdates[0])

	var statusEvents int
	for _, msg := range outboxRepo.messages {
		if msg.RoutingKey == outbox.RoutingKeyPaymentStatusChanged {
			statusEvents++
		}
	}
	assert.Equal(t, 1, statusEvents)
}

func TestCheckStatusCommitsUpdateAndEventTogether(t *testing.T) {
	sim := gateway.NewSimulator(1)
	paymentRepo := newFakePaymentRepo()
	outboxRepo := &fakeOutboxRepo{}
	u := &fakeUOW{paymentRepo: paymentRepo, outboxRepo: outboxRepo}
	svc := MustNewPaymentService(
		WithRepository(paymentRepo),
		WithUnitOfWorkFactory(func() unitOfWork { return u }),
		WithGateway(sim),
		WithCartService(&fakeCarts{snapshot: testSnapshot()}),
		WithOrderService(&fakeOrders{}),
	)

	p, err := svc.InitiateFromCart(context.Background(), "user-1", payment.MethodMobileMoney, Contact{Phone: "0712345678"})
	require.NoError(t, err)

	checked, err := svc.CheckStatus(context.Background(), p.ID)
	require.NoError(t, err)

	assert.Equal(t, payment.StatusCompleted, checked.Status)
	assert.True(t, u.committed)
	require.Len(t, outboxRepo.messages, 1)
	assert.Equal(t, outbox.RoutingKeyPaymentStatusChanged, outboxRepo.messages[0].RoutingKey)

	stored, err := paymentRepo.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, stored.Status)
}

func TestCheckStatusFailureReconcilesOrderAsFailed(t *testing.T) {
	sim := gateway.NewSimulator(5)
	orders := &fakeOrders{}
	svc, _, _ := newTestService(&fakeCarts{snapshot: testSnapshot()}, orders, sim)

	result, err := svc.Checkout(context.Background(), "user-1", payment.MethodMobileMoney, Contact{Phone: "0712345678"}, order.CreateOptions{})
	require.NoError(t, err)

	sim.Force(result.Payment.GatewayPaymentID, gateway.StatusFailed)

	checked, err := svc.CheckStatus(context.Background(), result.Payment.ID)
	require.NoError(t, err)

	assert.Equal(t, payment.StatusFailed, checked.Status)
	require.Len(t, orders.paymentUpdates, 1)
	assert.Equal(t, order.PaymentStatusFailed, orders.paymentUpdates[0])
}

func TestCheckStatusTerminalSkipsGateway(t *testing.T) {
	sim := gateway.NewSimulator(1)
	svc, repo, _ := newTestService(&fakeCarts{snapshot: testSnapshot()}, &fakeOrders{}, sim)

	p, err := svc.InitiateFromCart(context.Background(), "user-1", payment.MethodMobileMoney, Contact{Phone: "0712345678"})
	require.NoError(t, err)

	_, err = svc.CheckStatus(context.Background(), p.ID)
	require.NoError(t, err)

	// The record is now terminal; a later check must not touch the gateway.
	gw := &countingGateway{err: fmt.Errorf("%w: down", apperrors.ErrGatewayUnavailable)}
	u := &fakeUOW{paymentRepo: repo, outboxRepo: &fakeOutboxRepo{}}
	svc2 := MustNewPaymentService(
		WithRepository(repo),
		WithUnitOfWorkFactory(func() unitOfWork { return u }),
		WithGateway(gw),
		WithCartService(&fakeCarts{}),
		WithOrderService(&fakeOrders{}),
	)

	checked, err := svc2.CheckStatus(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, checked.Status)
}

func TestCheckStatusUnknownPayment(t *testing.T) {
	svc, _, _ := newTestService(&fakeCarts{}, &fakeOrders{}, gateway.NewSimulator(1))

	_, err := svc.CheckStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCancelPendingPayment(t *testing.T) {
	sim := gateway.NewSimulator(5)
	svc, _, _ := newTestService(&fakeCarts{snapshot: testSnapshot()}, &fakeOrders{}, sim)

	p, err := svc.InitiateFromCart(context.Background(), "user-1", payment.MethodMobileMoney, Contact{Phone: "0712345678"})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), "user-1", p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCancelled, cancelled.Status)
}

func TestCancelCompletedPaymentRejected(t *testing.T) {
	sim := gateway.NewSimulator(1)
	svc, _, _ := newTestService(&fakeCarts{snapshot: testSnapshot()}, &fakeOrders{}, sim)

	p, err := svc.InitiateFromCart(context.Background(), "user-1", payment.MethodMobileMoney, Contact{Phone: "0712345678"})
	require.NoError(t, err)

	_, err = svc.CheckStatus(context.Background(), p.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), "user-1", p.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestCancelByAnotherUser(t *testing.T) {
	sim := gateway.NewSimulator(5)
	svc, _, _ := newTestService(&fakeCarts{snapshot: testSnapshot()}, &fakeOrders{}, sim)

	p, err := svc.InitiateFromCart(context.Background(), "user-1", payment.MethodMobileMoney, Contact{Phone: "0712345678"})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), "user-2", p.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStats(t *testing.T) {
	sim := gateway.NewSimulator(1)
	svc, _, _ := newTestService(&fakeCarts{snapshot: testSnapshot()}, &fakeOrders{}, sim)

	p, err := svc.InitiateFromCart(context.Background(), "user-1", payment.MethodMobileMoney, Contact{Phone: "0712345678"})
	require.NoError(t, err)

	_, err = svc.CheckStatus(context.Background(), p.ID)
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.CountByStatus[payment.StatusCompleted])
	assert.Equal(t, int64(200), stats.CompletedAmountCents)
}
