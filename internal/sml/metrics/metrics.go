package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for SML calls and workflow outcomes.
type Metrics struct {
	SMLCalls        *prometheus.CounterVec
	SMLCallDuration *prometheus.HistogramVec
	Workflows       *prometheus.CounterVec
	ValidationFails *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
}

// New creates SML metrics registered with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SMLCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smp_sml_calls_total",
			Help: "SOAP calls made to the SML by operation and result category",
		}, []string{"operation", "category"}),
		SMLCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smp_sml_call_duration_seconds",
			Help:    "Duration of SOAP calls made to the SML",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		Workflows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smp_sml_workflow_outcomes_total",
			Help: "Registration workflow invocations by action and success",
		}, []string{"action", "success"}),
		ValidationFails: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smp_sml_workflow_validation_failures_total",
			Help: "Registration workflow invocations rejected by input validation",
		}, []string{"action"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smp_sml_capability_cache_lookups_total",
			Help: "Capability cache lookups by result",
		}, []string{"result"}),
	}
}

// ObserveCall records one SML call. category is "ok" on success.
func (m *Metrics) ObserveCall(operation, category string, d time.Duration) {
	if m == nil {
		return
	}
	m.SMLCalls.WithLabelValues(operation, category).Inc()
	m.SMLCallDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) IncWorkflow(action string, success bool) {
	if m == nil {
		return
	}
	m.Workflows.WithLabelValues(action, strconv.FormatBool(success)).Inc()
}

func (m *Metrics) IncValidationFailure(action string) {
	if m == nil {
		return
	}
	m.ValidationFails.WithLabelValues(action).Inc()
}

// IncCacheLookup records a capability cache hit or miss.
func (m *Metrics) IncCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
