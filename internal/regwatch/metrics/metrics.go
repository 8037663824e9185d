package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CyclesTotal       prometheus.Counter
	SourceFailures    prometheus.Counter
	DraftsProposed    prometheus.Counter
	DuplicatesIgnored prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		CyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gxpgovern_regwatch_cycles_total",
			Help: "Total number of regwatch polling cycles executed",
		}),
		SourceFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gxpgovern_regwatch_source_failures_total",
			Help: "Total number of failed fetches from the regulatory signal source",
		}),
		DraftsProposed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gxpgovern_regwatch_drafts_proposed_total",
			Help: "Total number of drafts successfully proposed by the poller",
		}),
		DuplicatesIgnored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gxpgovern_regwatch_duplicates_ignored_total",
			Help: "Total number of candidate drafts dropped as duplicates",
		}),
	}
}

func (m *Metrics) IncrementCycles() {
	if m != nil {
		m.CyclesTotal.Inc()
	}
}

func (m *Metrics) IncrementSourceFailures() {
	if m != nil {
		m.SourceFailures.Inc()
	}
}

func (m *Metrics) IncrementDraftsProposed() {
	if m != nil {
		m.DraftsProposed.Inc()
	}
}

func (m *Metrics) IncrementDuplicatesIgnored() {
	if m != nil {
		m.DuplicatesIgnored.Inc()
	}
}
