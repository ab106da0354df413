package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StepMetrics records outcomes of admin fix-up steps.
type StepMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewStepMetrics registers the fix-up step metrics on the provided registerer.
func NewStepMetrics(reg prometheus.Registerer) *StepMetrics {
	if reg == nil {
		return &StepMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fixup_step_duration_seconds",
		Help:    "Duration of fix-up steps in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"step"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fixup_step_success",
		Help: "Successful fix-up steps.",
	}, []string{"step"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fixup_step_failure",
		Help: "Failed fix-up steps.",
	}, []string{"step"})
	reg.MustRegister(duration, success, failure)
	return &StepMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

func (m *StepMetrics) ObserveDuration(step string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(step)).Observe(duration.Seconds())
}

func (m *StepMetrics) IncSuccess(step string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(step)).Inc()
}

func (m *StepMetrics) IncFailure(step string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(step)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
