package metrics

import "github.com/prometheus/client_golang/prometheus"

// Mail relay outcomes.
const (
	MailOutcomeSent     = "sent"
	MailOutcomeInvalid  = "invalid"
	MailOutcomeRejected = "rejected"
	MailOutcomeFailed   = "failed"
)

// MailMetrics counts relay requests by outcome and provider.
type MailMetrics struct {
	requests *prometheus.CounterVec
}

func NewMailMetrics(reg prometheus.Registerer) *MailMetrics {
	if reg == nil {
		return &MailMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mail_relay_requests_total",
		Help: "Mail relay requests by outcome.",
	}, []string{"provider", "outcome"})
	reg.MustRegister(requests)
	return &MailMetrics{requests: requests}
}

func (m *MailMetrics) Observe(provider, outcome string) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(provider), normalizeLabel(outcome)).Inc()
}
