package outbox

import (
	"encoding/json"
	"fmt"
	"time"
)

// OutboxMessage represents a domain event waiting to be published to RabbitMQ.
type OutboxMessage struct {
	ID           int64
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}

const (
	EventsExchange = "marketplace.events"

	RoutingKeyOrderCreated         = "order.created"
	RoutingKeyOrderStatusChanged   = "order.status_changed"
	RoutingKeyPaymentStatusChanged = "payment.status_changed"

	defaultMaxRetries = 10
)

// NewEvent marshals payload as JSON and wraps it in a publishable message.
func NewEvent(routingKey string, payload any) (OutboxMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return OutboxMessage{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	now := time.Now()

	return OutboxMessage{
		ExchangeName: EventsExchange,
		RoutingKey:   routingKey,
		Payload:      body,
		ContentType:  "application/json",
		MaxRetries:   defaultMaxRetries,
		CreatedAt:    now,
		UpdatedAt:    now,
		NextRetryAt:  now,
	}, nil
}
