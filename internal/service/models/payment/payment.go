package payment

import (
	"errors"
	"time"

	"github.com/agronexus/marketplace/internal/service/models/currency"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

type Method string

const (
	MethodMobileMoney  Method = "mobile_money"
	MethodCard         Method = "card"
	MethodBankTransfer Method = "bank_transfer"
)

var (
	ErrInvalidStatus = errors.New("invalid payment status")
	ErrInvalidMethod = errors.New("invalid payment method")
)

// statusTransitions: completion and failure come from the gateway; cancel is
// allowed only while pending. All other states are terminal.
var statusTransitions = map[Status][]Status{
	StatusPending: {StatusCompleted, StatusFailed, StatusCancelled},
}

func (s Status) String() string {
	return string(s)
}

// Terminal reports whether the status can no longer change.
func (s Status) Terminal() bool {
	return len(statusTransitions[s]) == 0
}

// CanTransitionTo reports whether the status may move to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodMobileMoney, MethodCard, MethodBankTransfer:
		return Method(s), nil
	default:
		return "", ErrInvalidMethod
	}
}

// Payment is the local tracking record for one external gateway transaction.
type Payment struct {
	ID               string            `json:"id"`
	UserID           string            `json:"userId"`
	OrderID          string            `json:"orderId,omitempty"`
	GatewayPaymentID string            `json:"gatewayPaymentId,omitempty"`
	Reference        string            `json:"reference"`
	CheckoutURL      string            `json:"checkoutUrl,omitempty"`
	Status           Status            `json:"status"`
	AmountCents      int64             `json:"amountCents"`
	AmountCurrency   currency.Currency `json:"amountCurrency"`
	Method           Method            `json:"method"`
	Phone            string            `json:"phone,omitempty"`
	Email            string            `json:"email,omitempty"`
	FailureReason    string            `json:"failureReason,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// Stats aggregates stored payment records by status.
type Stats struct {
	CountByStatus        map[Status]int64 `json:"countByStatus"`
	CompletedAmountCents int64            `json:"completedAmountCents"`
}
