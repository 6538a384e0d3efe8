package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the authorization engine.
type Metrics struct {
	// Decisions by operation and outcome ("allow"/"deny")
	Decisions *prometheus.CounterVec
}

// New creates a new Metrics instance with all authorization metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "campusforum_authz_decisions_total",
			Help: "Total authorization decisions by operation and outcome",
		}, []string{"operation", "outcome"}),
	}
}

// IncrementDecision records an authorization outcome.
func (m *Metrics) IncrementDecision(operation, outcome string) {
	if m != nil {
		m.Decisions.WithLabelValues(operation, outcome).Inc()
	}
}
