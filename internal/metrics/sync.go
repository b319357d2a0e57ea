package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records cart synchronization runs. A nil *SyncMetrics is valid
// and records nothing.
type SyncMetrics struct {
	runs     *prometheus.CounterVec
	lines    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cartsync_runs_total",
		Help: "Cart synchronization runs by direction and outcome.",
	}, []string{"direction", "outcome"})
	lines := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cartsync_lines_total",
		Help: "Cart lines processed during synchronization by result.",
	}, []string{"direction", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cartsync_duration_seconds",
		Help:    "Duration of cart synchronization runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"direction"})
	reg.MustRegister(runs, lines, duration)
	return &SyncMetrics{
		runs:     runs,
		lines:    lines,
		duration: duration,
	}
}

func (m *SyncMetrics) ObserveRun(direction, outcome string, elapsed time.Duration) {
	if m == nil || m.runs == nil {
		return
	}
	m.runs.WithLabelValues(normalizeLabel(direction), normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(normalizeLabel(direction)).Observe(elapsed.Seconds())
}

func (m *SyncMetrics) AddLines(direction, result string, n int) {
	if m == nil || m.lines == nil || n <= 0 {
		return
	}
	m.lines.WithLabelValues(normalizeLabel(direction), normalizeLabel(result)).Add(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
