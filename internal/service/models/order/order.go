package order

import (
	"time"

	"github.com/agronexus/marketplace/internal/service/models/currency"
	"github.com/agronexus/marketplace/internal/service/models/orderitem"
)

// CreateOptions carries the delivery details supplied at checkout.
type CreateOptions struct {
	PaymentMethod   string
	ShippingAddress string
	DeliveryNotes   string
	PhoneNumber     string
}

// Order is the immutable-once-created record of a checkout intent. The total
// is computed once at creation from the supplied line items; fulfillment and
// payment lifecycles move only through the declared transition tables.
type Order struct {
	ID              string                `json:"id"`
	BuyerID         string                `json:"buyerId"`
	Status          Status                `json:"status"`
	PaymentStatus   PaymentStatus         `json:"paymentStatus"`
	TotalCents      int64                 `json:"totalCents"`
	TotalCurrency   currency.Currency     `json:"totalCurrency"`
	PaymentMethod   string                `json:"paymentMethod,omitempty"`
	ShippingAddress string                `json:"shippingAddress,omitempty"`
	DeliveryNotes   string                `json:"deliveryNotes,omitempty"`
	PhoneNumber     string                `json:"phoneNumber,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
	OrderItems      []orderitem.OrderItem `json:"orderItems"`
}
