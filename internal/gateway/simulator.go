package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type simCharge struct {
	status  Status
	queries int
}

// Simulator is a deterministic in-memory gateway used when no gateway
// credentials are configured and in tests. A charge starts pending and
// reports completed once it has been queried completeAfter times, unless a
// terminal state was forced first.
type Simulator struct {
	mu            sync.Mutex
	charges       map[string]*simCharge
	completeAfter int
}

// NewSimulator creates a simulator that completes charges after the given
// number of status queries. completeAfter < 1 completes on the first query.
func NewSimulator(completeAfter int) *Simulator {
	if completeAfter < 1 {
		completeAfter = 1
	}

	return &Simulator{
		charges:       make(map[string]*simCharge),
		completeAfter: completeAfter,
	}
}

// SubmitCharge registers a pending charge.
func (s *Simulator) SubmitCharge(_ context.Context, req ChargeRequest) (ChargeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := "SIM-" + uuid.NewString()
	s.charges[id] = &simCharge{status: StatusPending}

	return ChargeResponse{
		GatewayPaymentID: id,
		Status:           StatusPending,
		CheckoutURL:      "https://gateway.simulator/checkout/" + req.Reference,
	}, nil
}

// QueryStatus advances the simulated charge lifecycle.
func (s *Simulator) QueryStatus(_ context.Context, gatewayPaymentID string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	charge, ok := s.charges[gatewayPaymentID]
	if !ok {
		return "", fmt.Errorf("unknown simulated charge %s", gatewayPaymentID)
	}

	if charge.status != StatusPending {
		return charge.status, nil
	}

	charge.queries++
	if charge.queries >= s.completeAfter {
		charge.status = StatusCompleted
	}

	return charge.status, nil
}

// Force moves a simulated charge into the given state, for driving failure
// and cancellation paths in tests.
func (s *Simulator) Force(gatewayPaymentID string, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if charge, ok := s.charges[gatewayPaymentID]; ok {
		charge.status = status
	}
}
