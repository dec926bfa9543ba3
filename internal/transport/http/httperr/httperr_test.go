package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agronexus/marketplace/internal/apperrors"
)

func TestWriteStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", fmt.Errorf("%w: bad input", apperrors.ErrValidation), http.StatusBadRequest},
		{"unauthorized", fmt.Errorf("%w: no", apperrors.ErrUnauthorized), http.StatusUnauthorized},
		{"not found", fmt.Errorf("%w: order x", apperrors.ErrNotFound), http.StatusNotFound},
		{"invalid transition", fmt.Errorf("%w: shipped to cancelled", apperrors.ErrInvalidTransition), http.StatusConflict},
		{"gateway rejected", fmt.Errorf("%w: card declined", apperrors.ErrGatewayRejected), http.StatusUnprocessableEntity},
		{"gateway unavailable", fmt.Errorf("%w: timeout", apperrors.ErrGatewayUnavailable), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Write(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestWriteHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, errors.New("pq: connection reset"))

	assert.NotContains(t, rec.Body.String(), "pq:")
	assert.Contains(t, rec.Body.String(), "internal server error")
}
