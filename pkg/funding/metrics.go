package funding

import "github.com/zeromicro/go-zero/core/metric"

var (
	venueCalls = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: "fujiscan",
		Subsystem: "funding",
		Name:      "venue_calls_total",
		Help:      "venue adapter calls by outcome",
		Labels:    []string{"venue", "outcome"},
	})
	venueDuration = metric.NewHistogramVec(&metric.HistogramVecOpts{
		Namespace: "fujiscan",
		Subsystem: "funding",
		Name:      "venue_duration_ms",
		Help:      "venue adapter call duration",
		Labels:    []string{"venue"},
		Buckets:   []float64{50, 100, 250, 500, 1000, 2000, 4000, 8000, 16000},
	})
)
