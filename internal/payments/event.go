package payments

import "encoding/json"

// EventPaymentCaptured is the one webhook event this service acts on.
// Everything else is acknowledged and ignored.
const EventPaymentCaptured = "payment.captured"

// WebhookEvent is the gateway's event envelope, parsed only after the raw
// body has been signature-authenticated. The nested shape mirrors the wire
// format; absent fields stay as zero values and are reported through a
// single typed check rather than chained lookups.
type WebhookEvent struct {
	Event   string         `json:"event"`
	Payload webhookPayload `json:"payload"`
}

type webhookPayload struct {
	Payment webhookPayment `json:"payment"`
}

type webhookPayment struct {
	Entity webhookPaymentEntity `json:"entity"`
}

type webhookPaymentEntity struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
}

// ParseWebhookEvent decodes an authenticated webhook body.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// CaptureRef extracts the (orderID, paymentID) pair from a capture event.
// ok is false when either field is absent from the envelope.
func (e *WebhookEvent) CaptureRef() (orderID, paymentID string, ok bool) {
	entity := e.Payload.Payment.Entity
	if entity.OrderID == "" || entity.ID == "" {
		return "", "", false
	}
	return entity.OrderID, entity.ID, true
}
