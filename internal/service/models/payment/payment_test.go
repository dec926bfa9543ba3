package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusAllowedTransitions(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
	}{
		{StatusPending, StatusCompleted},
		{StatusPending, StatusFailed},
		{StatusPending, StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.True(t, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// Terminal records used to be freely rewritable; every edge out of a
// terminal status must stay rejected.
func TestStatusRejectsEdgesLegacyOverwriteAllowed(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
	}{
		{StatusCompleted, StatusFailed},
		{StatusCompleted, StatusCancelled},
		{StatusCompleted, StatusPending},
		{StatusFailed, StatusCompleted},
		{StatusCancelled, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to)+"_no_longer_writable", func(t *testing.T) {
			assert.False(t, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("mobile_money")
	require.NoError(t, err)
	assert.Equal(t, MethodMobileMoney, m)

	_, err = ParseMethod("cheque")
	assert.ErrorIs(t, err, ErrInvalidMethod)
}
