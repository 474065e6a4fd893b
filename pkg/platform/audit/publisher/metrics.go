package publisher

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	audit "smpadmin/pkg/platform/audit"
)

// Metrics holds Prometheus metrics for audit emission.
type Metrics struct {
	EventsEmitted   *prometheus.CounterVec
	PersistFailures *prometheus.CounterVec
	PersistDuration prometheus.Histogram
}

// NewMetrics creates audit metrics registered with reg. A nil reg leaves
// them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EventsEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smp_audit_events_emitted_total",
			Help: "Total number of audit events persisted by action and outcome",
		}, []string{"action", "success"}),
		PersistFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smp_audit_persist_failures_total",
			Help: "Total number of audit events that could not be persisted",
		}, []string{"action"}),
		PersistDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "smp_audit_persist_duration_seconds",
			Help:    "Duration of audit event persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObservePersist records a successful write.
func (m *Metrics) ObservePersist(action audit.Action, success bool, d time.Duration) {
	if m == nil {
		return
	}
	m.EventsEmitted.WithLabelValues(string(action), strconv.FormatBool(success)).Inc()
	m.PersistDuration.Observe(d.Seconds())
}

// IncPersistFailures records a failed write.
func (m *Metrics) IncPersistFailures(action audit.Action) {
	if m == nil {
		return
	}
	m.PersistFailures.WithLabelValues(string(action)).Inc()
}
