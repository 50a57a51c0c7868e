package venuehttp

import "github.com/zeromicro/go-zero/core/metric"

const metricNamespace = "fujiscan"

var (
	upstreamRequests = metric.NewCounterVec(&metric.CounterVecOpts{
		Namespace: metricNamespace,
		Subsystem: "venue_http",
		Name:      "requests_total",
		Help:      "outbound venue requests by outcome",
		Labels:    []string{"venue", "outcome"},
	})
	upstreamLatency = metric.NewHistogramVec(&metric.HistogramVecOpts{
		Namespace: metricNamespace,
		Subsystem: "venue_http",
		Name:      "duration_ms",
		Help:      "outbound venue request latency including retries",
		Labels:    []string{"venue"},
		Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})
)
