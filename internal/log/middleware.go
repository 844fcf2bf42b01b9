// SPDX-License-Identifier: MIT

package log

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Middleware logs one line per request after the handler returns.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			logger := WithComponentFromContext(r.Context(), "http")
			ev := logger.Info()
			if status >= http.StatusInternalServerError {
				ev = logger.Error()
			}
			ev.Str(FieldEvent, "request.handled").
				Str(FieldMethod, r.Method).
				Str(FieldRoute, route).
				Int(FieldStatus, status).
				Int(FieldBytes, ww.BytesWritten()).
				Float64(FieldDuration, float64(time.Since(start).Microseconds())/1000).
				Str(FieldRemote, r.RemoteAddr).
				Msg("request handled")
		})
	}
}
