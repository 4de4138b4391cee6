package metrics

import "github.com/prometheus/client_golang/prometheus"

// Generation and budget Prometheus metrics.
var (
	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "postforge",
			Name:      "generation_requests_total",
			Help:      "Total number of content generation requests",
		},
		[]string{"kind", "model", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "postforge",
			Name:      "generation_request_duration_seconds",
			Help:      "Content generation request duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"kind", "model"},
	)

	GenerationUnitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "postforge",
			Name:      "generation_units_total",
			Help:      "Total generation units charged against user budgets",
		},
		[]string{"kind"},
	)

	GenerationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "postforge",
			Name:      "generation_errors_total",
			Help:      "Total generation errors",
		},
		[]string{"kind", "error_type"},
	)

	BudgetDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "postforge",
			Name:      "budget_decisions_total",
			Help:      "Budget admission decisions",
		},
		[]string{"decision"}, // "allowed" / "denied" / "error"
	)

	PublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "postforge",
			Name:      "publish_total",
			Help:      "Post publish attempts by target and outcome",
		},
		[]string{"target", "status"},
	)
)

var genMetricsRegistered bool

// RegisterGenerationMetrics registers Prometheus generation metrics. Must be called once from main.
func RegisterGenerationMetrics() {
	if genMetricsRegistered {
		return
	}
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationRequestDuration)
	prometheus.MustRegister(GenerationUnitsTotal)
	prometheus.MustRegister(GenerationErrorsTotal)
	prometheus.MustRegister(BudgetDecisionsTotal)
	prometheus.MustRegister(PublishTotal)
	genMetricsRegistered = true
}
