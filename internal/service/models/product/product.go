package product

import (
	"time"

	"github.com/agronexus/marketplace/internal/service/models/currency"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Product represents a sellable catalog entry owned by a farmer.
type Product struct {
	ID            string            `json:"id"`
	FarmerID      string            `json:"farmerId"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Category      string            `json:"category"`
	PriceCents    int64             `json:"priceCents"`
	PriceCurrency currency.Currency `json:"priceCurrency"`
	Unit          string            `json:"unit"`
	Quantity      int64             `json:"quantity"`
	IsOrganic     bool              `json:"isOrganic"`
	Rating        float64           `json:"rating"`
	Status        Status            `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}
