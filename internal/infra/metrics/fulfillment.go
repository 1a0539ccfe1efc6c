package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		webhookEventsTotal,
		creditsGrantedTotal,
	)
}

var (
	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Webhook deliveries by outcome (fulfilled/ignored/duplicate/unknown_product/unknown_user/unauthorized/malformed/error).",
		},
		[]string{"outcome"},
	)

	creditsGrantedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "credits_granted_total",
			Help: "Credits granted through purchase fulfillment.",
		},
	)
)

func IncWebhookEvent(outcome string) {
	webhookEventsTotal.WithLabelValues(norm(outcome)).Inc()
}

func AddCreditsGranted(amount int64) {
	creditsGrantedTotal.Add(float64(amount))
}
