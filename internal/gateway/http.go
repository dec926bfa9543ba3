package gateway

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/viper"

	"github.com/agronexus/marketplace/internal/apperrors"
)

// errorBody is the gateway's error envelope.
type errorBody struct {
	Message string `json:"message"`
}

// statusBody is the response of the status query endpoint.
type statusBody struct {
	Status string `json:"status"`
}

// HTTPGateway talks to the real payment processor over HTTP. Transport
// errors and 5xx responses are retried with exponential backoff inside the
// resty client; 4xx responses are surfaced immediately.
type HTTPGateway struct {
	client *resty.Client
}

// MustNewHTTPGateway creates a gateway client from configuration.
func MustNewHTTPGateway() *HTTPGateway {
	baseURL := viper.GetString("gateway.base_url")
	if baseURL == "" {
		panic("gateway.base_url is not configured")
	}

	timeout := viper.GetDuration("gateway.timeout")
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	retryCount := viper.GetInt("gateway.retry_count")
	if retryCount == 0 {
		retryCount = 3
	}

	retryWait := viper.GetDuration("gateway.retry_wait")
	if retryWait == 0 {
		retryWait = 500 * time.Millisecond
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Authorization", "Bearer "+os.Getenv("GATEWAY_API_KEY")).
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWait).
		SetRetryMaxWaitTime(retryWait * 8).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})

	return &HTTPGateway{
		client: client,
	}
}

// SubmitCharge submits a charge for the given amount and contact.
func (g *HTTPGateway) SubmitCharge(ctx context.Context, req ChargeRequest) (ChargeResponse, error) {
	var result ChargeResponse
	var gwErr errorBody

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&gwErr).
		Post("/v1/charges")
	if err != nil {
		return ChargeResponse{}, fmt.Errorf("%w: %v", apperrors.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode() >= 500 {
		return ChargeResponse{}, fmt.Errorf("%w: gateway returned %d", apperrors.ErrGatewayUnavailable, resp.StatusCode())
	}
	if resp.IsError() {
		return ChargeResponse{}, fmt.Errorf("%w: %s", apperrors.ErrGatewayRejected, gwErr.Message)
	}

	return result, nil
}

// QueryStatus fetches the authoritative charge status from the gateway.
func (g *HTTPGateway) QueryStatus(ctx context.Context, gatewayPaymentID string) (Status, error) {
	var result statusBody
	var gwErr errorBody

	resp, err := g.client.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&gwErr).
		Get("/v1/charges/" + gatewayPaymentID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrGatewayUnavailable, err)
	}

	if resp.StatusCode() >= 500 {
		return "", fmt.Errorf("%w: gateway returned %d", apperrors.ErrGatewayUnavailable, resp.StatusCode())
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: %s", apperrors.ErrGatewayRejected, gwErr.Message)
	}

	return Status(result.Status), nil
}
