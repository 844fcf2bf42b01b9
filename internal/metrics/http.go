// SPDX-License-Identifier: MIT

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snippets_http_request_duration_seconds",
		Help:    "HTTP request latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	httpRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "snippets_http_requests_in_flight",
		Help: "Current number of HTTP requests being served",
	})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snippets_http_response_size_bytes",
		Help:    "HTTP response sizes in bytes",
		Buckets: prometheus.ExponentialBuckets(100, 10, 8),
	}, []string{"method", "route", "status"})

	httpRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snippets_http_rate_limited_total",
		Help: "Requests rejected by the per-client rate limiter",
	})
)

// HTTPRequestStarted tracks one in-flight request; call the returned func when it ends.
func HTTPRequestStarted() func() {
	httpRequestsInFlight.Inc()
	return httpRequestsInFlight.Dec
}

// ObserveHTTPRequest records latency and response size for a finished request.
// route should be the router pattern, not the raw path.
func ObserveHTTPRequest(method, route string, status, bytes int, d time.Duration) {
	code := strconv.Itoa(status)
	httpRequestDuration.WithLabelValues(method, route, code).Observe(d.Seconds())
	if bytes > 0 {
		httpResponseSize.WithLabelValues(method, route, code).Observe(float64(bytes))
	}
}

// RecordRateLimited counts a request rejected with 429.
func RecordRateLimited() {
	httpRateLimited.Inc()
}
