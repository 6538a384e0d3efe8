package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks notification fan-out outcomes.
type Metrics struct {
	Deliveries *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Deliveries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusforum_notification_deliveries_total",
				Help: "Notification fan-out deliveries by type and outcome.",
			},
			[]string{"type", "outcome"},
		),
	}
}

// IncrementDelivery is nil-safe so tests can pass a nil Metrics.
func (m *Metrics) IncrementDelivery(notificationType, outcome string) {
	if m == nil || m.Deliveries == nil {
		return
	}
	m.Deliveries.WithLabelValues(notificationType, outcome).Inc()
}
