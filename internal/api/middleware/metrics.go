// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"time"

	"github.com/ManuGH/snippets/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Metrics creates a middleware that records Prometheus metrics for HTTP requests.
// Requests are labelled by chi route pattern to keep cardinality bounded.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			done := metrics.HTTPRequestStarted()
			defer done()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.ObserveHTTPRequest(r.Method, routePattern(r), status, ww.BytesWritten(), time.Since(start))
		})
	}
}

// routePattern returns the matched chi pattern, or "unmatched" for 404s so
// arbitrary paths never become label values.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
