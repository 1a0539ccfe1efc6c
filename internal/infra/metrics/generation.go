package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		generationsTotal,
		creditsSpentTotal,
	)
}

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generations_total",
			Help: "Room redesign generations by mode and status.",
		},
		[]string{"mode", "status"},
	)

	creditsSpentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "credits_spent_total",
			Help: "Credits consumed by generations (net of refunds).",
		},
	)
)

func ObserveGeneration(mode string, success bool, creditsSpent int64) {
	status := "ok"
	if !success {
		status = "error"
	}
	generationsTotal.WithLabelValues(norm(mode), status).Inc()
	if creditsSpent > 0 {
		creditsSpentTotal.Add(float64(creditsSpent))
	}
}
