package apperrors

import "errors"

// Sentinel errors shared by every service. Callers classify failures with
// errors.Is and wrap these with fmt.Errorf("...: %w", err) to add detail.
var (
	// ErrValidation marks malformed or missing input. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced entity that does not exist. Never retried.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized marks a request with no resolvable identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidTransition marks a status change outside the declared edge set.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrGatewayUnavailable marks a transient gateway failure (network, timeout,
	// 5xx) that survived the bounded retry policy.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrGatewayRejected marks a 4xx gateway response. Never retried.
	ErrGatewayRejected = errors.New("payment rejected by gateway")
)
