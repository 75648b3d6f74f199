package payment

import "github.com/prometheus/client_golang/prometheus"

var (
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookstore_payment_transitions_total",
			Help: "Orders moved to paid, by the callback that did it.",
		},
		[]string{"source"},
	)

	ipnMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookstore_ipn_messages_total",
			Help: "IPN notifications received, by outcome.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(transitionsTotal, ipnMessagesTotal)
}
