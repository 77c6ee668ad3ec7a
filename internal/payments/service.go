package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/walle-league/regpay/internal/gateway"
	"github.com/walle-league/regpay/internal/idgen"
	"github.com/walle-league/regpay/internal/logging"
	"github.com/walle-league/regpay/internal/traces"
)

// Capture channels, recorded in metrics and logs.
const (
	channelVerify  = "verify"
	channelWebhook = "webhook"
)

// Service orchestrates the payment lifecycle: minting gateway orders,
// confirming captures from either trust channel, and projecting the
// outcome onto the registrant record.
type Service struct {
	store         Store
	gateway       gateway.Client
	subjects      SubjectDirectory
	notifier      Notifier
	keySecret     string
	webhookSecret string
	fee           int64
	currency      string
}

// NewService creates a new payment lifecycle service.
// keySecret signs the client-relayed verify tuple; webhookSecret
// authenticates webhook bodies and may be empty when webhooks are not
// configured for the deployment.
func NewService(store Store, gw gateway.Client, subjects SubjectDirectory, notifier Notifier, keySecret, webhookSecret string, fee int64, currency string) *Service {
	return &Service{
		store:         store,
		gateway:       gw,
		subjects:      subjects,
		notifier:      notifier,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		fee:           fee,
		currency:      currency,
	}
}

// CreateOrder mints a gateway order for the registrant's fee and records it
// as CREATED. A registrant that has already paid, through either a marked
// record or an existing captured order, is refused before the gateway is
// called.
func (s *Service) CreateOrder(ctx context.Context, subjectID string) (*Order, error) {
	ctx, span := traces.StartSpan(ctx, "payments.CreateOrder", traces.RegistrantID(subjectID))
	defer span.End()

	subject, err := s.subjects.GetSubject(ctx, subjectID)
	if err != nil {
		return nil, ErrSubjectNotFound
	}
	if subject.Paid {
		return nil, ErrAlreadyPaid
	}
	if _, err := s.store.FindCapturedBySubject(ctx, subjectID); err == nil {
		return nil, ErrAlreadyCaptured
	}

	receipt := idgen.WithPrefix("rcpt_")
	orderID, err := s.gateway.CreateOrder(ctx, s.fee, s.currency, receipt)
	if err != nil {
		logging.L(ctx).Error("gateway order creation failed",
			"registrant_id", subjectID,
			"error", err)
		return nil, err
	}

	now := time.Now().UTC()
	order := &Order{
		OrderID:   orderID,
		SubjectID: subjectID,
		Amount:    s.fee,
		Currency:  s.currency,
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("record order: %w", err)
	}

	ordersCreatedTotal.Inc()
	span.SetAttributes(traces.OrderID(orderID), traces.Amount(s.fee))
	logging.L(ctx).Info("payment order created",
		"order_id", orderID,
		"registrant_id", subjectID,
		"amount_minor", s.fee,
		"currency", s.currency)

	return order, nil
}

// VerifyClientSide confirms a capture relayed through the paying browser.
//
// The order is looked up by (order id, registrant id) as a compound key; a
// mismatch on either half is indistinguishable from an unknown order. A bad
// signature permanently fails the order, recording the offered payment id
// and signature for later inspection. Replays against a terminal order
// return the recorded outcome without mutating anything.
func (s *Service) VerifyClientSide(ctx context.Context, req VerifyRequest) (*Order, error) {
	ctx, span := traces.StartSpan(ctx, "payments.VerifyClientSide",
		traces.OrderID(req.OrderID),
		traces.RegistrantID(req.SubjectID),
		traces.Channel(channelVerify))
	defer span.End()

	order, err := s.store.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.SubjectID != req.SubjectID {
		return nil, ErrOrderNotFound
	}

	if order.Status.Terminal() {
		logging.L(ctx).Info("verify replay on settled order",
			"order_id", order.OrderID,
			"status", order.Status)
		return order, nil
	}

	if !gateway.VerifyPaymentSignature(s.keySecret, req.OrderID, req.PaymentID, req.Signature) {
		signatureFailuresTotal.WithLabelValues(channelVerify).Inc()
		// Record the rejected tuple so the failure can be audited. If a
		// concurrent webhook won the race the order is already terminal
		// and this is a no-op.
		if _, err := s.store.CompareAndTransition(ctx, req.OrderID, StatusCreated, StatusFailed, req.PaymentID, req.Signature); err != nil {
			logging.L(ctx).Error("failed to record signature rejection",
				"order_id", req.OrderID,
				"error", err)
		}
		logging.L(ctx).Warn("payment signature rejected",
			"order_id", req.OrderID,
			"registrant_id", req.SubjectID)
		return nil, ErrInvalidSignature
	}

	result, err := s.store.CompareAndTransition(ctx, req.OrderID, StatusCreated, StatusCaptured, req.PaymentID, req.Signature)
	if err != nil {
		return nil, fmt.Errorf("capture order: %w", err)
	}

	if result == TransitionApplied {
		capturesTotal.WithLabelValues(channelVerify).Inc()
		logging.L(ctx).Info("payment captured",
			"order_id", req.OrderID,
			"registrant_id", req.SubjectID,
			"channel", channelVerify)
		s.settle(ctx, req.SubjectID, req.OrderID)
	}

	return s.store.GetByOrderID(ctx, req.OrderID)
}

// HandleWebhook processes a gateway webhook delivery.
//
// A nil return means the delivery was consumed and must be acknowledged,
// including events this service doesn't act on, captures it has already
// applied, and orders it has never heard of. Acknowledging those stops the
// gateway from redelivering forever. Only authentication problems and a
// missing webhook secret surface as errors.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	ctx, span := traces.StartSpan(ctx, "payments.HandleWebhook", traces.Channel(channelWebhook))
	defer span.End()

	if s.webhookSecret == "" {
		return ErrWebhookSecretMissing
	}
	if signature == "" {
		return ErrMissingSignature
	}
	if !gateway.VerifyWebhookSignature(s.webhookSecret, body, signature) {
		signatureFailuresTotal.WithLabelValues(channelWebhook).Inc()
		logging.L(ctx).Warn("webhook signature rejected")
		return ErrInvalidSignature
	}

	ev, err := ParseWebhookEvent(body)
	if err != nil {
		webhookEventsTotal.WithLabelValues(webhookResultMissingFields).Inc()
		logging.L(ctx).Warn("webhook body unparseable after valid signature", "error", err)
		return nil
	}

	if ev.Event != EventPaymentCaptured {
		webhookEventsTotal.WithLabelValues(webhookResultIgnoredEvent).Inc()
		logging.L(ctx).Debug("webhook event ignored", "event", ev.Event)
		return nil
	}

	orderID, paymentID, ok := ev.CaptureRef()
	if !ok {
		webhookEventsTotal.WithLabelValues(webhookResultMissingFields).Inc()
		logging.L(ctx).Warn("capture event missing payment reference")
		return nil
	}
	span.SetAttributes(traces.OrderID(orderID))

	result, err := s.store.CompareAndTransition(ctx, orderID, StatusCreated, StatusCaptured, paymentID, "")
	if errors.Is(err, ErrOrderNotFound) {
		webhookEventsTotal.WithLabelValues(webhookResultUnknownOrder).Inc()
		logging.L(ctx).Warn("capture event for unknown order", "order_id", orderID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("capture order: %w", err)
	}

	if result == TransitionNoop {
		webhookEventsTotal.WithLabelValues(webhookResultDuplicate).Inc()
		logging.L(ctx).Info("duplicate capture delivery", "order_id", orderID)
		return nil
	}

	webhookEventsTotal.WithLabelValues(webhookResultCaptured).Inc()
	capturesTotal.WithLabelValues(channelWebhook).Inc()

	order, err := s.store.GetByOrderID(ctx, orderID)
	if err != nil {
		logging.L(ctx).Error("captured order unreadable after transition",
			"order_id", orderID,
			"error", err)
		return nil
	}
	logging.L(ctx).Info("payment captured",
		"order_id", orderID,
		"registrant_id", order.SubjectID,
		"channel", channelWebhook)
	s.settle(ctx, order.SubjectID, orderID)

	return nil
}

// settle runs the post-capture side effects: project the paid flag onto the
// registrant and announce the capture. The capture itself is already
// durable; a projection failure degrades to a logged reconciliation signal
// and never rolls the order back.
func (s *Service) settle(ctx context.Context, subjectID, orderID string) {
	if err := s.subjects.MarkSubjectPaid(ctx, subjectID); err != nil {
		projectionFailuresTotal.Inc()
		logging.L(ctx).Error("registrant paid-status projection failed",
			"order_id", orderID,
			"registrant_id", subjectID,
			"error", err)
	}

	if s.notifier == nil {
		return
	}
	subject, err := s.subjects.GetSubject(ctx, subjectID)
	if err != nil {
		logging.L(ctx).Warn("skipping capture notification, registrant unreadable",
			"registrant_id", subjectID,
			"error", err)
		return
	}
	order, err := s.store.GetByOrderID(ctx, orderID)
	if err != nil {
		return
	}
	s.notifier.PaymentCaptured(ctx, subject, order)
}

// GetOrder returns an order by its gateway id.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return s.store.GetByOrderID(ctx, orderID)
}

// ListBySubject returns a registrant's orders, newest first.
func (s *Service) ListBySubject(ctx context.Context, subjectID string) ([]*Order, error) {
	return s.store.ListBySubject(ctx, subjectID)
}

// List returns recent orders, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]*Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.List(ctx, limit)
}
