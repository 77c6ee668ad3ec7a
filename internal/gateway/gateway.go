// Package gateway is a thin client for the payment gateway's REST API.
//
// It owns the two cryptographic verification schemes the gateway uses:
// the order|payment signature relayed through the paying browser, and the
// webhook body signature sent server-to-server. The two schemes use
// different secrets and are never interchangeable.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/walle-league/regpay/internal/metrics"
)

// ErrUpstreamUnavailable is returned when the gateway cannot be reached or
// refuses the request. Callers may retry; the client itself never does.
var ErrUpstreamUnavailable = errors.New("payment gateway unavailable")

// Client mints orders on the remote payment gateway.
type Client interface {
	// CreateOrder creates a gateway order for the given minor-unit amount
	// and returns the gateway-issued order id.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)
}

// HTTPClient implements Client against the gateway's REST API using
// basic-auth credentials. It is constructed once at startup and passed in
// as an explicit dependency; there is no package-level client state.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
}

// Timeout for the single outbound call. The gateway is the only remote
// peer this service waits on; anything slower than this is a failure.
const requestTimeout = 10 * time.Second

// NewHTTPClient creates a gateway client with a bounded request timeout.
func NewHTTPClient(baseURL, keyID, keySecret string) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		keyID:      keyID,
		keySecret:  keySecret,
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID string `json:"id"`
}

// CreateOrder issues a single POST /v1/orders call. Transport failures and
// gateway rejections both surface as ErrUpstreamUnavailable; retries are
// the caller's policy, not the client's.
func (c *HTTPClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", fmt.Errorf("marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build order request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.GatewayRequestDuration.WithLabelValues("transport_error").Observe(time.Since(start).Seconds())
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		metrics.GatewayRequestDuration.WithLabelValues("rejected").Observe(time.Since(start).Seconds())
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstreamUnavailable, resp.StatusCode, detail)
	}
	metrics.GatewayRequestDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	var result createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("%w: gateway returned no order id", ErrUpstreamUnavailable)
	}

	return result.ID, nil
}
