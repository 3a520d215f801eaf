package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FilterRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_finder_filter_requests_total",
			Help: "Total number of filter evaluations per domain",
		},
		[]string{"domain"},
	)

	FilterResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "support_finder_filter_results",
			Help:    "Number of entities left after filtering",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"domain"},
	)

	QuizTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_finder_quiz_transitions_total",
			Help: "Quiz transitions by domain and kind (start, answer, skip, close, reset, complete)",
		},
		[]string{"domain", "transition"},
	)

	MissingTranslations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "support_finder_missing_translations_total",
			Help: "Dictionary lookups that fell back to the key",
		},
		[]string{"namespace"},
	)
)
