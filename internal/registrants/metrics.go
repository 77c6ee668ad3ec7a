package registrants

import "github.com/prometheus/client_golang/prometheus"

var registrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "regpay",
	Subsystem: "registrants",
	Name:      "registrations_total",
	Help:      "Total registrations created.",
})

func init() {
	prometheus.MustRegister(registrationsTotal)
}
