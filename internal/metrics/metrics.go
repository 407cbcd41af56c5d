package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tixgw_events_total",
			Help: "Webhook events by processing stage",
		},
		[]string{"stage"}, // received|invalid_signature|malformed|ignored|duplicate|issued|failed|email_failed|db_failed
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		EventsTotal,
	)
}
