package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ParseTotal counts briefing parses by kind (customer, opportunity)
	// and result (ok, error).
	ParseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "briefing_parse_total",
			Help: "Total briefing parse attempts",
		},
		[]string{"kind", "result"},
	)

	ParseWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "briefing_parse_warnings_total",
			Help: "Warnings emitted during briefing normalization",
		},
		[]string{"kind"},
	)

	SubmissionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_submission_total",
			Help: "Customer submission attempts by outcome",
		},
		[]string{"result"},
	)

	RemoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crm_remote_call_duration_seconds",
			Help:    "Duration of CRM gateway calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "result"},
	)
)
