package payments

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/walle-league/regpay/internal/gateway"
)

// webhookSignatureHeader carries the gateway's HMAC over the raw body.
const webhookSignatureHeader = "X-Razorpay-Signature"

// Handler provides HTTP endpoints for the payment lifecycle.
type Handler struct {
	service *Service
	keyID   string
}

// NewHandler creates a new payments handler. keyID is the public half of
// the gateway credentials, echoed to clients so they can open checkout.
func NewHandler(service *Service, keyID string) *Handler {
	return &Handler{service: service, keyID: keyID}
}

// RegisterRoutes sets up the payment lifecycle routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/payments/create-order", h.CreateOrder)
	r.POST("/payments/verify", h.Verify)
	r.POST("/payments/webhook", h.Webhook)
	r.GET("/payments/orders", h.ListOrders)
	r.GET("/payments/orders/:order_id", h.GetOrder)
}

// CreateOrder handles POST /payments/create-order
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "subject_id is required",
		})
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), req.SubjectID)
	if err != nil {
		status := http.StatusInternalServerError
		code := "internal_error"
		switch {
		case errors.Is(err, ErrSubjectNotFound):
			status = http.StatusNotFound
			code = "not_found"
		case errors.Is(err, ErrAlreadyPaid), errors.Is(err, ErrAlreadyCaptured):
			status = http.StatusConflict
			code = "already_paid"
		case errors.Is(err, gateway.ErrUpstreamUnavailable):
			status = http.StatusBadGateway
			code = "gateway_unavailable"
		}
		c.JSON(status, gin.H{"error": code, "message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id": order.OrderID,
		"amount":   order.Amount,
		"currency": order.Currency,
		"key_id":   h.keyID,
	})
}

// Verify handles POST /payments/verify
func (h *Handler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "subject_id, order_id, payment_id and signature are required",
		})
		return
	}

	order, err := h.service.VerifyClientSide(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "internal_error"
		switch {
		case errors.Is(err, ErrOrderNotFound):
			status = http.StatusNotFound
			code = "not_found"
		case errors.Is(err, ErrInvalidSignature):
			status = http.StatusBadRequest
			code = "invalid_signature"
		}
		c.JSON(status, gin.H{"error": code, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id": order.OrderID,
		"status":   order.Status,
	})
}

// Webhook handles POST /payments/webhook
//
// The body is consumed raw so the signature is checked over the exact
// bytes the gateway signed. Once authenticated, every delivery is
// acknowledged with 200 regardless of content so the gateway stops
// redelivering.
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "unreadable body",
		})
		return
	}

	err = h.service.HandleWebhook(c.Request.Context(), body, c.GetHeader(webhookSignatureHeader))
	if err != nil {
		status := http.StatusInternalServerError
		code := "internal_error"
		switch {
		case errors.Is(err, ErrWebhookSecretMissing):
			code = "webhook_not_configured"
		case errors.Is(err, ErrMissingSignature):
			status = http.StatusBadRequest
			code = "missing_signature"
		case errors.Is(err, ErrInvalidSignature):
			status = http.StatusBadRequest
			code = "invalid_signature"
		}
		c.JSON(status, gin.H{"error": code, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListOrders handles GET /payments/orders
// With ?subject_id= it narrows to one registrant's orders.
func (h *Handler) ListOrders(c *gin.Context) {
	var (
		orders []*Order
		err    error
	)
	if subjectID := c.Query("subject_id"); subjectID != "" {
		orders, err = h.service.ListBySubject(c.Request.Context(), subjectID)
	} else {
		limit := 50
		if l := c.Query("limit"); l != "" {
			if parsed, perr := strconv.Atoi(l); perr == nil && parsed > 0 {
				limit = parsed
			}
		}
		orders, err = h.service.List(c.Request.Context(), limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder handles GET /payments/orders/:order_id
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "no such payment order",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}
