package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts review decisions per resource type. Nil-safe: a nil *Metrics
// records nothing, so tests and trimmed deployments can skip registration.
type Metrics struct {
	reviewDecisions *prometheus.CounterVec
}

// NewMetrics registers the review-decision counter on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		reviewDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "intake_review_decisions_total",
				Help: "Review decisions recorded, by resource type and decision.",
			},
			[]string{"resource", "decision"},
		),
	}
	if err := reg.Register(m.reviewDecisions); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) recordDecision(resource, decision string) {
	if m == nil {
		return
	}
	m.reviewDecisions.WithLabelValues(resource, decision).Inc()
}
