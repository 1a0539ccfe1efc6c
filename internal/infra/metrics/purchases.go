package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(purchaseAttemptsTotal)
}

var purchaseAttemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "purchase_attempts_total",
		Help: "Client purchase attempts by status (completed/cancelled/in_flight/not_authenticated/error).",
	},
	[]string{"status"},
)

func IncPurchaseAttempt(status string) {
	purchaseAttemptsTotal.WithLabelValues(norm(status)).Inc()
}
