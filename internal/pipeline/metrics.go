package pipeline

import (
	"github.com/dgallion1/docnum/internal/numbering"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// documentsTotal counts numbered documents.
	// Labels: status (completed, failed)
	documentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docnum",
		Subsystem: "pipeline",
		Name:      "documents_total",
		Help:      "Total documents numbered by outcome",
	}, []string{"status"})

	// referencesTotal counts marker rewrites.
	// Labels: kind (definition, substitution, assign, unresolved)
	referencesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docnum",
		Subsystem: "pipeline",
		Name:      "references_total",
		Help:      "Total num markers rewritten by kind",
	}, []string{"kind"})

	processingSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "docnum",
		Subsystem: "pipeline",
		Name:      "processing_seconds",
		Help:      "Time to parse, number and render one document",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})
)

func observe(stats numbering.Stats) {
	referencesTotal.WithLabelValues("definition").Add(float64(stats.Definitions))
	referencesTotal.WithLabelValues("substitution").Add(float64(stats.Substitutions))
	referencesTotal.WithLabelValues("assign").Add(float64(stats.AssignReferences))
	referencesTotal.WithLabelValues("unresolved").Add(float64(stats.Unresolved))
}
