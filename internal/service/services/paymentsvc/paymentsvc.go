package paymentsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agronexus/marketplace/internal/apperrors"
	"github.com/agronexus/marketplace/internal/dal/interfaces/ioutboxrepo"
	"github.com/agronexus/marketplace/internal/dal/interfaces/ipaymentrepo"
	"github.com/agronexus/marketplace/internal/dal/postgres"
	paymentrepo "github.com/agronexus/marketplace/internal/dal/repositories/payment/postgres"
	"github.com/agronexus/marketplace/internal/dal/uow"
	"github.com/agronexus/marketplace/internal/gateway"
	"github.com/agronexus/marketplace/internal/service/models/checkout"
	"github.com/agronexus/marketplace/internal/service/models/order"
	"github.com/agronexus/marketplace/internal/service/models/outbox"
	"github.com/agronexus/marketplace/internal/service/models/payment"
)

// cartService is the slice of the cart API that checkout needs.
type cartService interface {
	Snapshot(ctx context.Context, userID string) (*checkout.Snapshot, error)
	Clear(ctx context.Context, userID string) error
}

// orderService is the slice of the order API that checkout and
// reconciliation need.
type orderService interface {
	CreateFromSnapshot(ctx context.Context, snap *checkout.Snapshot, opts order.CreateOptions) (*order.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, next order.PaymentStatus) (*order.Order, error)
}

// unitOfWork scopes the status-change write and its event to one transaction.
type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	PaymentRepository() ipaymentrepo.IPaymentRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// PaymentService tracks gateway charges locally and drives the checkout
// orchestration: snapshot, order, charge, cart clear. The local record is the
// source of truth for what we asked the gateway to do; the gateway is the
// source of truth for what actually happened.
type PaymentService struct {
	paymentRepo ipaymentrepo.IPaymentRepository
	newUOW      func() unitOfWork
	gw          gateway.PaymentGateway
	carts       cartService
	orders      orderService
}

// option is a function that configures the PaymentService.
type option func(*PaymentService)

// MustNewPaymentService creates a new PaymentService.
func MustNewPaymentService(opts ...option) *PaymentService {
	s := &PaymentService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.paymentRepo == nil || s.newUOW == nil {
		panic("paymentsvc: a payment repository and a unit of work factory are required")
	}
	if s.gw == nil {
		panic("paymentsvc: a payment gateway is required")
	}
	if s.carts == nil || s.orders == nil {
		panic("paymentsvc: cart and order services are required")
	}

	return s
}

// WithPostgresClient builds the repositories and unit of work from the
// Postgres client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *PaymentService) {
		s.paymentRepo = paymentrepo.NewPostgresPaymentRepository(pgClient.Pool())
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithRepository sets the payment repository directly.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithRepository(paymentRepo ipaymentrepo.IPaymentRepository) option {
	return func(s *PaymentService) {
		s.paymentRepo = paymentRepo
	}
}

// WithUnitOfWorkFactory sets the transaction factory directly.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *PaymentService) {
		s.newUOW = factory
	}
}

// WithGateway sets the payment gateway.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithGateway(gw gateway.PaymentGateway) option {
	return func(s *PaymentService) {
		s.gw = gw
	}
}

// WithCartService sets the cart dependency.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCartService(carts cartService) option {
	return func(s *PaymentService) {
		s.carts = carts
	}
}

// WithOrderService sets the order dependency.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOrderService(orders orderService) option {
	return func(s *PaymentService) {
		s.orders = orders
	}
}

// Contact carries the payer's contact details for the chosen method.
type Contact struct {
	Phone string
	Email string
}

// CheckoutResult is the combined outcome of a full checkout.
type CheckoutResult struct {
	Order   *order.Order     `json:"order"`
	Payment *payment.Payment `json:"payment"`
}

// InitiateFromCart prices the user's cart and submits a charge for the total.
// The cart is validated before the gateway is ever contacted, so an empty
// cart can never produce a stray external charge.
func (s *PaymentService) InitiateFromCart(ctx context.Context, userID string, method payment.Method, contact Contact) (*payment.Payment, error) {
	snap, err := s.carts.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.initiate(ctx, snap, "", method, contact)
}

// Checkout runs the full flow: price the cart once, create the order from
// that snapshot, charge the same total, then clear the cart.
func (s *PaymentService) Checkout(ctx context.Context, userID string, method payment.Method, contact Contact, opts order.CreateOptions) (*CheckoutResult, error) {
	snap, err := s.carts.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	opts.PaymentMethod = string(method)
	if opts.PhoneNumber == "" {
		opts.PhoneNumber = contact.Phone
	}

	o, err := s.orders.CreateFromSnapshot(ctx, snap, opts)
	if err != nil {
		return nil, err
	}

	p, err := s.initiate(ctx, snap, o.ID, method, contact)
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		// The order and charge exist; an uncleared cart is recoverable.
		slog.Error("failed to clear cart after checkout", "user_id", userID, "error", err.Error())
	}

	return &CheckoutResult{Order: o, Payment: p}, nil
}

func (s *PaymentService) initiate(ctx context.Context, snap *checkout.Snapshot, orderID string, method payment.Method, contact Contact) (*payment.Payment, error) {
	switch method {
	case payment.MethodMobileMoney:
		normalized, err := NormalizePhone(contact.Phone)
		if err != nil {
			return nil, err
		}
		contact.Phone = normalized
	case payment.MethodCard, payment.MethodBankTransfer:
		if contact.Email == "" {
			return nil, fmt.Errorf("%w: email is required for %s payments", apperrors.ErrValidation, method)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported payment method %q", apperrors.ErrValidation, method)
	}

	purpose := "cart"
	if orderID != "" {
		purpose = "order"
	}

	now := time.Now()
	p := payment.Payment{
		ID:             uuid.NewString(),
		UserID:         snap.UserID,
		OrderID:        orderID,
		Reference:      NewReference(snap.UserID, purpose),
		Status:         payment.StatusPending,
		AmountCents:    snap.TotalCents,
		AmountCurrency: snap.Currency,
		Method:         method,
		Phone:          contact.Phone,
		Email:          contact.Email,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.paymentRepo.Insert(ctx, p); err != nil {
		return nil, err
	}

	resp, err := s.gw.SubmitCharge(ctx, gateway.ChargeRequest{
		Reference:   p.Reference,
		AmountCents: p.AmountCents,
		Currency:    p.AmountCurrency.String(),
		Method:      string(p.Method),
		Phone:       contact.Phone,
		Email:       contact.Email,
	})
	if err != nil {
		p.Status = payment.StatusFailed
		p.FailureReason = err.Error()
		p.UpdatedAt = time.Now()
		if uerr := s.paymentRepo.Update(ctx, p); uerr != nil {
			slog.Error("failed to mark payment failed", "payment_id", p.ID, "error", uerr.Error())
		}

		return nil, err
	}

	p.GatewayPaymentID = resp.GatewayPaymentID
	p.CheckoutURL = resp.CheckoutURL
	p.UpdatedAt = time.Now()

	if err := s.paymentRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	slog.Info("payment initiated",
		"payment_id", p.ID,
		"gateway_payment_id", p.GatewayPaymentID,
		"amount_cents", p.AmountCents,
		"method", string(p.Method))

	return &p, nil
}

// Get retrieves one payment record, nil when absent.
func (s *PaymentService) Get(ctx context.Context, id string) (*payment.Payment, error) {
	return s.paymentRepo.Get(ctx, id)
}

// CheckStatus re-verifies a payment against the gateway and applies any legal
// transition locally, emitting an event and reconciling the linked order.
// Terminal records are returned as-is without a gateway round trip.
func (s *PaymentService) CheckStatus(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := s.paymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, id)
	}

	if p.Status.Terminal() {
		return p, nil
	}

	if p.GatewayPaymentID == "" {
		return p, nil
	}

	gwStatus, err := s.gw.QueryStatus(ctx, p.GatewayPaymentID)
	if err != nil {
		return nil, err
	}

	next, err := payment.ParseStatus(string(gwStatus))
	if err != nil {
		return nil, fmt.Errorf("gateway reported unknown status %q for payment %s", gwStatus, p.ID)
	}

	if next == p.Status {
		return p, nil
	}

	if !p.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: payment status cannot change from %s to %s", apperrors.ErrInvalidTransition, p.Status, next)
	}

	prev := p.Status
	p.Status = next
	p.UpdatedAt = time.Now()

	event, err := outbox.NewEvent(outbox.RoutingKeyPaymentStatusChanged, map[string]any{
		"payment_id": p.ID,
		"order_id":   p.OrderID,
		"from":       prev,
		"to":         next,
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

	if err := u.PaymentRepository().Update(ctx, *p); err != nil {
		return nil, err
	}

	if err := u.OutboxRepository().Insert(ctx, event); err != nil {
		return nil, err
	}

	if err := u.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("payment status changed", "payment_id", p.ID, "from", prev.String(), "to", next.String())

	s.reconcileOrder(ctx, p)

	return p, nil
}

// reconcileOrder mirrors a settled payment onto its order. A conflicting
// order state is logged and skipped; the payment record already holds the
// gateway's verdict.
func (s *PaymentService) reconcileOrder(ctx context.Context, p *payment.Payment) {
	if p.OrderID == "" {
		return
	}

	var next order.PaymentStatus
	switch p.Status {
	case payment.StatusCompleted:
		next = order.PaymentStatusPaid
	case payment.StatusFailed:
		next = order.PaymentStatusFailed
	default:
		return
	}

	if _, err := s.orders.UpdatePaymentStatus(ctx, p.OrderID, next); err != nil {
		if errors.Is(err, apperrors.ErrInvalidTransition) || errors.Is(err, apperrors.ErrNotFound) {
			slog.Warn("skipped order payment reconciliation",
				"payment_id", p.ID, "order_id", p.OrderID, "error", err.Error())
			return
		}
		slog.Error("failed to reconcile order payment status",
			"payment_id", p.ID, "order_id", p.OrderID, "error", err.Error())
	}
}

// Cancel abandons a pending payment locally. The gateway is not contacted;
// a charge that already settled there will surface through CheckStatus.
func (s *PaymentService) Cancel(ctx context.Context, userID, id string) (*payment.Payment, error) {
	p, err := s.paymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.UserID != userID {
		return nil, fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, id)
	}

	if !p.Status.CanTransitionTo(payment.StatusCancelled) {
		return nil, fmt.Errorf("%w: payment status cannot change from %s to %s", apperrors.ErrInvalidTransition, p.Status, payment.StatusCancelled)
	}

	p.Status = payment.StatusCancelled
	p.UpdatedAt = time.Now()

	if err := s.paymentRepo.Update(ctx, *p); err != nil {
		return nil, err
	}

	return p, nil
}

// ListPendingBefore returns pending payments created before the cutoff, for
// the reconciliation worker.
func (s *PaymentService) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]payment.Payment, error) {
	return s.paymentRepo.ListPendingBefore(ctx, cutoff, limit)
}

// Stats aggregates stored payment records by status.
func (s *PaymentService) Stats(ctx context.Context) (*payment.Stats, error) {
	return s.paymentRepo.Stats(ctx)
}
