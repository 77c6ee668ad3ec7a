// Package notify announces confirmed captures to an external endpoint,
// typically the mailer that sends the registrant their confirmation.
//
// Delivery is fire-and-forget. A capture is already durable by the time a
// notification fires; a lost notification costs an email, not a payment.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/walle-league/regpay/internal/gateway"
	"github.com/walle-league/regpay/internal/idgen"
	"github.com/walle-league/regpay/internal/payments"
)

var (
	notifyTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "regpay",
		Subsystem: "notify",
		Name:      "deliveries_total",
		Help:      "Total capture notification attempts.",
	})

	notifyErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "regpay",
		Subsystem: "notify",
		Name:      "delivery_errors_total",
		Help:      "Total capture notification failures.",
	})
)

func init() {
	prometheus.MustRegister(notifyTotal, notifyErrors)
}

const (
	deliveryTimeout = 10 * time.Second
	signatureHeader = "X-Regpay-Signature"
)

// event is the payload posted to the notification endpoint.
type event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	RegistrantID    string `json:"registrantId"`
	RegistrantName  string `json:"registrantName"`
	RegistrantEmail string `json:"registrantEmail"`
	OrderID         string `json:"orderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

// HTTPNotifier posts signed capture events to a configured URL.
type HTTPNotifier struct {
	client *http.Client
	url    string
	secret string
	logger *slog.Logger
}

// Compile-time check that HTTPNotifier implements payments.Notifier.
var _ payments.Notifier = (*HTTPNotifier)(nil)

// NewHTTPNotifier creates a notifier posting to url. The body is signed
// with secret so the receiver can authenticate deliveries.
func NewHTTPNotifier(url, secret string, logger *slog.Logger) *HTTPNotifier {
	return &HTTPNotifier{
		client: &http.Client{Timeout: deliveryTimeout},
		url:    url,
		secret: secret,
		logger: logger,
	}
}

// PaymentCaptured announces a capture. It returns immediately; delivery
// happens on its own goroutine with its own deadline so a slow receiver
// never holds up request handling.
func (n *HTTPNotifier) PaymentCaptured(_ context.Context, subject *payments.Subject, order *payments.Order) {
	ev := event{
		ID:              idgen.WithPrefix("evt_"),
		Type:            "payment.captured",
		Timestamp:       time.Now().UTC(),
		RegistrantID:    subject.ID,
		RegistrantName:  subject.Name,
		RegistrantEmail: subject.Email,
		OrderID:         order.OrderID,
		Amount:          order.Amount,
		Currency:        order.Currency,
	}

	go n.deliver(ev)
}

func (n *HTTPNotifier) deliver(ev event) {
	notifyTotal.Inc()

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	body, err := json.Marshal(ev)
	if err != nil {
		notifyErrors.Inc()
		n.logger.Warn("capture notification marshal failed", "event_id", ev.ID, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		notifyErrors.Inc()
		n.logger.Warn("capture notification request failed", "event_id", ev.ID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if n.secret != "" {
		req.Header.Set(signatureHeader, gateway.SignPayload(n.secret, body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		notifyErrors.Inc()
		n.logger.Warn("capture notification delivery failed",
			"event_id", ev.ID,
			"order_id", ev.OrderID,
			"error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		notifyErrors.Inc()
		n.logger.Warn("capture notification rejected",
			"event_id", ev.ID,
			"order_id", ev.OrderID,
			"status", resp.StatusCode)
		return
	}

	n.logger.Debug("capture notification delivered", "event_id", ev.ID, "order_id", ev.OrderID)
}

// Noop discards all notifications, used when no notify URL is configured.
type Noop struct{}

var _ payments.Notifier = Noop{}

func (Noop) PaymentCaptured(context.Context, *payments.Subject, *payments.Order) {}
