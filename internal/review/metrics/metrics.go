// Package metrics provides prometheus instrumentation for the review workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Transitions     *prometheus.CounterVec
	GuardrailBlocks prometheus.Counter
	Denials         prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gxpgovern_review_transitions_total",
			Help: "Completed review workflow transitions, by action.",
		}, []string{"action"}),
		GuardrailBlocks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gxpgovern_review_guardrail_blocks_total",
			Help: "Approvals blocked by guardrail errors.",
		}),
		Denials: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gxpgovern_review_denials_total",
			Help: "Governed operations denied for missing permissions.",
		}),
	}
}

func (m *Metrics) IncrementTransition(action string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(action).Inc()
}

func (m *Metrics) IncrementGuardrailBlock() {
	if m == nil {
		return
	}
	m.GuardrailBlocks.Inc()
}

func (m *Metrics) IncrementDenial() {
	if m == nil {
		return
	}
	m.Denials.Inc()
}
