package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks retention sweep activity.
type Metrics struct {
	ThreadsPurged prometheus.Counter
	SweepDuration prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		ThreadsPurged: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campusforum_retention_threads_purged_total",
			Help: "Threads removed by retention sweeps.",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "campusforum_retention_sweep_duration_seconds",
			Help:    "Duration of retention sweeps.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveSweep is nil-safe so tests can pass a nil Metrics.
func (m *Metrics) ObserveSweep(purged int, seconds float64) {
	if m == nil {
		return
	}
	m.ThreadsPurged.Add(float64(purged))
	m.SweepDuration.Observe(seconds)
}
