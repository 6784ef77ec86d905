package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DispatchTotal counts outbound dispatch attempts by channel
	// (whatsapp, call) and result (ok, error).
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservas_dispatch_total",
			Help: "Outbound dispatch attempts by channel and result.",
		},
		[]string{"channel", "result"},
	)

	// WebhookTotal counts inbound webhook deliveries by source.
	WebhookTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservas_webhook_total",
			Help: "Inbound webhook deliveries by source.",
		},
		[]string{"source"},
	)
)
