// Package metrics holds the prometheus collectors shared by the draw services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "secretsanta"

var (
	// GenerationAttempts observes how many shuffles the generator needed per call
	GenerationAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_attempts",
		Help:      "Shuffles tried before a valid ring was found or the bound was hit.",
		Buckets:   []float64{1, 2, 5, 10, 50, 100, 500, 1000, 2000},
	})

	// GenerationResults counts generator outcomes (ok, infeasible)
	GenerationResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generation_results_total",
		Help:      "Generator outcomes.",
	}, []string{"result"})

	// Initializations counts document initialization attempts by result
	Initializations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "initializations_total",
		Help:      "Exchange document initialization attempts.",
	}, []string{"result"})

	// Reveals counts reveal attempts by result
	Reveals = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reveals_total",
		Help:      "Reveal attempts.",
	}, []string{"result"})

	// SnapshotsApplied counts snapshots accepted into the local cache
	SnapshotsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_applied_total",
		Help:      "Snapshots accepted by the coordinator.",
	})

	// Decorations counts reveal messages by source (generated, fallback)
	Decorations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decorations_total",
		Help:      "Reveal messages by source.",
	}, []string{"source"})
)
