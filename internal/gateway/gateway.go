package gateway

import "context"

// Status is the gateway-reported state of a charge.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// ChargeRequest describes one charge submission.
type ChargeRequest struct {
	Reference   string `json:"reference"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Method      string `json:"method"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
}

// ChargeResponse is the gateway's acknowledgement of a submitted charge.
type ChargeResponse struct {
	GatewayPaymentID string `json:"payment_id"`
	Status           Status `json:"status"`
	CheckoutURL      string `json:"checkout_url,omitempty"`
}

// PaymentGateway is the capability boundary to the external payment
// processor. The implementation is chosen once at construction time; business
// logic never branches on which one it got. Adapters classify failures as
// apperrors.ErrGatewayUnavailable (transient, after the bounded retry policy)
// or apperrors.ErrGatewayRejected (4xx, never retried).
type PaymentGateway interface {
	SubmitCharge(ctx context.Context, req ChargeRequest) (ChargeResponse, error)
	QueryStatus(ctx context.Context, gatewayPaymentID string) (Status, error)
}
