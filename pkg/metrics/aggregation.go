package metrics

import "github.com/prometheus/client_golang/prometheus"

// AggregationMetrics tracks the best-sellers queries, in particular how deep
// the weekly fallback search had to go.
type AggregationMetrics struct {
	queries       *prometheus.CounterVec
	fallbackDepth prometheus.Histogram
}

// NewAggregationMetrics registers the aggregation metrics on the registerer.
func NewAggregationMetrics(reg prometheus.Registerer) *AggregationMetrics {
	if reg == nil {
		return &AggregationMetrics{}
	}
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bestseller_queries_total",
		Help: "Best-seller aggregation queries, by kind.",
	}, []string{"kind"})
	fallbackDepth := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bestseller_fallback_weeks",
		Help:    "Weeks stepped back before the trending window found data.",
		Buckets: []float64{0, 1, 2, 3, 4},
	})
	reg.MustRegister(queries, fallbackDepth)
	return &AggregationMetrics{
		queries:       queries,
		fallbackDepth: fallbackDepth,
	}
}

// IncQuery counts one aggregation query of the named kind.
func (a *AggregationMetrics) IncQuery(kind string) {
	if a == nil || a.queries == nil {
		return
	}
	a.queries.WithLabelValues(normalizeLabel(kind)).Inc()
}

// ObserveFallbackDepth records how many weeks back the trending query walked.
func (a *AggregationMetrics) ObserveFallbackDepth(weeksBack int) {
	if a == nil || a.fallbackDepth == nil {
		return
	}
	a.fallbackDepth.Observe(float64(weeksBack))
}
