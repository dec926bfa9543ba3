package cartitem

import (
	"time"

	"github.com/agronexus/marketplace/internal/service/models/currency"
)

// CartItem is one product line in a user's pre-checkout selection. The unit
// price is snapshotted when the line is first added so later catalog price
// changes do not silently reprice the cart.
type CartItem struct {
	ID             string            `json:"id"`
	UserID         string            `json:"userId"`
	ProductID      string            `json:"productId"`
	Quantity       int64             `json:"quantity"`
	UnitPriceCents int64             `json:"unitPriceCents"`
	PriceCurrency  currency.Currency `json:"priceCurrency"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// TotalCents sums quantity times unit price over the given items.
func TotalCents(items []CartItem) int64 {
	var total int64
	for _, it := range items {
		total += it.UnitPriceCents * it.Quantity
	}

	return total
}

// Count sums the quantities over the given items.
func Count(items []CartItem) int64 {
	var count int64
	for _, it := range items {
		count += it.Quantity
	}

	return count
}
