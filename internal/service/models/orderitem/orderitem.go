package orderitem

import (
	"time"

	"github.com/agronexus/marketplace/internal/service/models/currency"
)

// OrderItem represents an item within an order. Name and unit price are
// captured at order time and never re-resolved from the catalog.
type OrderItem struct {
	ID             string            `json:"id"`
	OrderID        string            `json:"orderId"`
	ProductID      string            `json:"productId"`
	ProductName    string            `json:"productName"`
	Quantity       int64             `json:"quantity"`
	UnitPriceCents int64             `json:"unitPriceCents"`
	PriceCurrency  currency.Currency `json:"priceCurrency"`
	CreatedAt      time.Time         `json:"createdAt"`
}
