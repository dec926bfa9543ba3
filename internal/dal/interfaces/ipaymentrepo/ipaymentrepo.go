package ipaymentrepo

import (
	"context"
	"time"

	"github.com/agronexus/marketplace/internal/service/models/payment"
)

// IPaymentRepository is an interface for payment postgres repository.
// Get returns nil without error when the record is absent.
type IPaymentRepository interface {
	Insert(ctx context.Context, p payment.Payment) error
	Update(ctx context.Context, p payment.Payment) error
	Get(ctx context.Context, id string) (*payment.Payment, error)
	ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]payment.Payment, error)
	Stats(ctx context.Context) (*payment.Stats, error)
}
