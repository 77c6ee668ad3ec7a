package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignPayload computes the hex-encoded HMAC-SHA256 of payload under secret.
// Both verification schemes and the outbound notifier share this primitive.
func SignPayload(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyPaymentSignature checks the client-relayed capture signature:
// HMAC over "orderID|paymentID" under the integration key secret. This
// only proves the browser relayed genuine gateway output.
func VerifyPaymentSignature(keySecret, orderID, paymentID, signature string) bool {
	expected := SignPayload(keySecret, []byte(orderID+"|"+paymentID))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the server-to-server webhook signature:
// HMAC over the exact raw request bytes under the webhook secret. The body
// must be the bytes as received, never a re-serialization, since field
// order or whitespace changes would silently break verification.
func VerifyWebhookSignature(webhookSecret string, body []byte, signature string) bool {
	expected := SignPayload(webhookSecret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
