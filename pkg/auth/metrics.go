package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ---------------------------------------------------------------------------
// Prometheus collectors
// ---------------------------------------------------------------------------

// Metrics holds the authentication and authorization collectors. A nil
// *Metrics is valid and records nothing, so instrumentation stays optional.
type Metrics struct {
	attempts *prometheus.CounterVec
	denials  prometheus.Counter
}

// NewMetrics creates and registers the auth collectors. A nil registerer
// uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Authentication attempts by scheme and outcome.",
		}, []string{"scheme", "outcome"}),
		denials: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_permission_denials_total",
			Help: "Requests rejected for missing permissions.",
		}),
	}
	reg.MustRegister(m.attempts, m.denials)
	return m
}

func (m *Metrics) observeAttempt(scheme Scheme, outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(string(scheme), outcome).Inc()
}

func (m *Metrics) observeDenial() {
	if m == nil {
		return
	}
	m.denials.Inc()
}
