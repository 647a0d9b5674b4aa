package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(httpRequestDuration)
}

var httpRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "gateway_http_request_duration_ms",
		Help:    "HTTP request latency distribution in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	},
	[]string{"method", "route", "status"},
)

func ObserveHTTPRequest(method, route, status string, ms float64) {
	httpRequestDuration.WithLabelValues(method, route, status).Observe(ms)
}
