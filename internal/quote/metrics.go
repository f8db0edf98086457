package quote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GeneratedTotal counts completed quotes by sector.
	GeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quoted",
			Subsystem: "quote",
			Name:      "generated_total",
			Help:      "Total number of quotes generated, by sector",
		},
		[]string{"sector"},
	)

	// RejectedTotal counts rejected inputs by reason code.
	RejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quoted",
			Subsystem: "quote",
			Name:      "rejected_total",
			Help:      "Total number of rejected inputs, by reason",
		},
		[]string{"reason"},
	)

	// FallbackTotal counts which tier served each fallback-capable stage.
	// Labels: stage (sector, items, copy), tier (external, local)
	FallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quoted",
			Subsystem: "quote",
			Name:      "fallback_total",
			Help:      "Stage outcomes by serving tier",
		},
		[]string{"stage", "tier"},
	)

	// RecoveredTotal counts pipeline faults recovered via the full local
	// fallback path.
	RecoveredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "quoted",
			Subsystem: "quote",
			Name:      "recovered_total",
			Help:      "Total number of pipeline faults recovered locally",
		},
	)
)
