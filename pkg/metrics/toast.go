package metrics

import "github.com/prometheus/client_golang/prometheus"

// ToastMetrics exports notification center activity. It satisfies toast.Metrics.
type ToastMetrics struct {
	enqueued *prometheus.CounterVec
	removed  *prometheus.CounterVec
	active   prometheus.Gauge
	centers  prometheus.Gauge
}

func NewToastMetrics(reg prometheus.Registerer) *ToastMetrics {
	if reg == nil {
		return &ToastMetrics{}
	}
	enqueued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "toast_enqueued_total",
		Help: "Toasts accepted by a notification center.",
	}, []string{"kind"})
	removed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "toast_removed_total",
		Help: "Toasts removed from a notification center.",
	}, []string{"reason"})
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "toast_active",
		Help: "Toasts currently displayed across all centers.",
	})
	centers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "toast_centers",
		Help: "Live per-user notification centers.",
	})
	reg.MustRegister(enqueued, removed, active, centers)
	return &ToastMetrics{
		enqueued: enqueued,
		removed:  removed,
		active:   active,
		centers:  centers,
	}
}

func (m *ToastMetrics) ToastEnqueued(kind string) {
	if m == nil || m.enqueued == nil {
		return
	}
	m.enqueued.WithLabelValues(normalizeLabel(kind)).Inc()
	m.active.Inc()
}

func (m *ToastMetrics) ToastRemoved(reason string) {
	if m == nil || m.removed == nil {
		return
	}
	m.removed.WithLabelValues(normalizeLabel(reason)).Inc()
	m.active.Dec()
}

func (m *ToastMetrics) ToastCenters(n int) {
	if m == nil || m.centers == nil {
		return
	}
	m.centers.Set(float64(n))
}
