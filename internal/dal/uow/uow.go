package uow

import (
	"context"

	"github.com/agronexus/marketplace/internal/dal/interfaces/iorderitemrepo"
	"github.com/agronexus/marketplace/internal/dal/interfaces/iorderrepo"
	"github.com/agronexus/marketplace/internal/dal/interfaces/ioutboxrepo"
	"github.com/agronexus/marketplace/internal/dal/interfaces/ipaymentrepo"
	"github.com/agronexus/marketplace/internal/dal/interfaces/iproductrepo"
	"github.com/agronexus/marketplace/internal/dal/postgres"
	orderrepo "github.com/agronexus/marketplace/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/agronexus/marketplace/internal/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/agronexus/marketplace/internal/dal/repositories/outbox/postgres"
	paymentrepo "github.com/agronexus/marketplace/internal/dal/repositories/payment/postgres"
	productrepo "github.com/agronexus/marketplace/internal/dal/repositories/product/postgres"

	"github.com/jackc/pgx/v5"
)

// UnitOfWork scopes the domain repositories to one transaction so an order,
// its items, the stock decrements and the outbox event commit or roll back
// together. Payment status changes and their events use the same mechanism.
type UnitOfWork struct {
	client        *postgres.Client
	tx            pgx.Tx
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
	productRepo   iproductrepo.IProductRepository
	paymentRepo   ipaymentrepo.IPaymentRepository
}

func NewUnitOfWork(client *postgres.Client) *UnitOfWork {
	return &UnitOfWork{
		client:        client,
		orderRepo:     orderrepo.NewPostgresOrderRepository(client.Pool()),
		orderItemRepo: orderitemrepo.NewPostgresOrderItemRepository(client.Pool()),
		outboxRepo:    outboxrepo.NewPostgresOutboxRepository(client.Pool()),
		productRepo:   productrepo.NewPostgresProductRepository(client.Pool()),
		paymentRepo:   paymentrepo.NewPostgresPaymentRepository(client.Pool()),
	}
}

func (u *UnitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *UnitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *UnitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func (u *UnitOfWork) ProductRepository() iproductrepo.IProductRepository {
	return u.productRepo
}

func (u *UnitOfWork) PaymentRepository() ipaymentrepo.IPaymentRepository {
	return u.paymentRepo
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	tx, err := u.client.Pool().Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	// Rebuild the repositories on top of the transaction
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(tx)
	u.outboxRepo = outboxrepo.NewPostgresOutboxRepository(tx)
	u.productRepo = productrepo.NewPostgresProductRepository(tx)
	u.paymentRepo = paymentrepo.NewPostgresPaymentRepository(tx)

	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit(ctx)
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Rollback(ctx)
}
