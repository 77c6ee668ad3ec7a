package payments

import "github.com/prometheus/client_golang/prometheus"

var (
	ordersCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "regpay",
		Subsystem: "payment",
		Name:      "orders_created_total",
		Help:      "Total payment orders created.",
	})

	capturesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "regpay",
		Subsystem: "payment",
		Name:      "captures_total",
		Help:      "Total successful captures by confirming channel.",
	}, []string{"channel"})

	signatureFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "regpay",
		Subsystem: "payment",
		Name:      "signature_failures_total",
		Help:      "Total rejected signatures by scope (verify or webhook).",
	}, []string{"scope"})

	// webhookEventsTotal distinguishes benign ignores from events that
	// should have been recognized. The webhook contract is still
	// accept-and-ignore; this is the forensic signal.
	webhookEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "regpay",
		Subsystem: "payment",
		Name:      "webhook_events_total",
		Help:      "Total authenticated webhook events by handling result.",
	}, []string{"result"})

	projectionFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "regpay",
		Subsystem: "payment",
		Name:      "projection_failures_total",
		Help:      "Captures whose registrant status update failed and needs reconciliation.",
	})
)

// Webhook handling results.
const (
	webhookResultCaptured      = "captured"
	webhookResultDuplicate     = "duplicate"
	webhookResultIgnoredEvent  = "ignored_event_type"
	webhookResultMissingFields = "ignored_missing_fields"
	webhookResultUnknownOrder  = "ignored_unknown_order"
)

func init() {
	prometheus.MustRegister(
		ordersCreatedTotal,
		capturesTotal,
		signatureFailuresTotal,
		webhookEventsTotal,
		projectionFailuresTotal,
	)
}
