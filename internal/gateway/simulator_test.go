package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatorLifecycle(t *testing.T) {
	sim := NewSimulator(2)

	resp, err := sim.SubmitCharge(context.Background(), ChargeRequest{
		Reference:   "AGN-test-cart-1",
		AmountCents: 500,
		Currency:    "KES",
		Method:      "mobile_money",
		Phone:       "254712345678",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, resp.Status)
	assert.NotEmpty(t, resp.GatewayPaymentID)
	assert.Contains(t, resp.CheckoutURL, "AGN-test-cart-1")

	status, err := sim.QueryStatus(context.Background(), resp.GatewayPaymentID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)

	status, err = sim.QueryStatus(context.Background(), resp.GatewayPaymentID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)

	// Completed charges stay completed.
	status, err = sim.QueryStatus(context.Background(), resp.GatewayPaymentID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
}

func TestSimulatorForce(t *testing.T) {
	sim := NewSimulator(10)

	resp, err := sim.SubmitCharge(context.Background(), ChargeRequest{Reference: "r"})
	require.NoError(t, err)

	sim.Force(resp.GatewayPaymentID, StatusFailed)

	status, err := sim.QueryStatus(context.Background(), resp.GatewayPaymentID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, status)
}

func TestSimulatorUnknownCharge(t *testing.T) {
	sim := NewSimulator(1)

	_, err := sim.QueryStatus(context.Background(), "nope")
	assert.Error(t, err)
}
