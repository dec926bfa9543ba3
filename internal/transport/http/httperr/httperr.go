package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/agronexus/marketplace/internal/apperrors"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Write maps a service error onto its HTTP status and writes a JSON error
// body. Unclassified errors become 500 with a generic message so internals
// never leak to clients.
func Write(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, apperrors.ErrInvalidTransition):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrGatewayRejected):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, apperrors.ErrGatewayUnavailable):
		status, message = http.StatusServiceUnavailable, "payment gateway is unavailable"
	default:
		slog.Error("Unhandled error in HTTP handler", "error", err)
	}

	WriteJSON(w, status, errorResponse{Error: message})
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}

// Decode decodes the request body into v, reporting a validation error on
// malformed JSON.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: failed to decode request body", apperrors.ErrValidation)
	}

	return nil
}
