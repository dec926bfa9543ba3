package checkout

import (
	"time"

	"github.com/agronexus/marketplace/internal/service/models/currency"
)

// LineItem is one priced line of a checkout snapshot.
type LineItem struct {
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// Snapshot is the single priced view of a cart taken at checkout initiation.
// Order creation and payment initiation both consume the same snapshot so the
// two can never disagree on the total.
type Snapshot struct {
	UserID     string            `json:"userId"`
	Items      []LineItem        `json:"items"`
	TotalCents int64             `json:"totalCents"`
	Currency   currency.Currency `json:"currency"`
	TakenAt    time.Time         `json:"takenAt"`
}

// NewSnapshot builds a snapshot and computes the total once.
func NewSnapshot(userID string, items []LineItem, cur currency.Currency) *Snapshot {
	var total int64
	for _, it := range items {
		total += it.UnitPriceCents * it.Quantity
	}

	return &Snapshot{
		UserID:     userID,
		Items:      items,
		TotalCents: total,
		Currency:   cur,
		TakenAt:    time.Now(),
	}
}
