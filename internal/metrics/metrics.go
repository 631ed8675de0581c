// Package metrics holds the Prometheus collectors for paste lifecycle events.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Consume outcomes used as the "outcome" label.
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeExpired   = "expired"
	OutcomeViewLimit = "view_limit"
	OutcomeError     = "error"
)

var (
	// PastesCreated counts successfully stored pastes.
	PastesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vanish_pastes_created_total",
		Help: "Total number of pastes created.",
	})

	// PasteConsumes counts read attempts by outcome. The outcome is never
	// exposed to readers, only here.
	PasteConsumes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vanish_paste_consumes_total",
			Help: "Total number of paste reads by outcome.",
		},
		[]string{"outcome"},
	)

	// PastesSwept counts pastes removed by the janitor.
	PastesSwept = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vanish_pastes_swept_total",
		Help: "Total number of unreadable pastes removed by the janitor.",
	})
)

func init() {
	prometheus.MustRegister(PastesCreated, PasteConsumes, PastesSwept)
}
