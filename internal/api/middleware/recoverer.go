// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/ManuGH/snippets/internal/log"
)

// Recoverer turns a handler panic into a 500 response and an error log line.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger := log.WithComponentFromContext(r.Context(), "http")
			logger.Error().
				Str(log.FieldEvent, "request.panic").
				Str(log.FieldMethod, r.Method).
				Str("path", r.URL.Path).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("recovered from handler panic")

			writeJSONError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred.")
		}()

		next.ServeHTTP(w, r)
	})
}

func writeJSONError(w http.ResponseWriter, status int, code, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + code + `","detail":"` + detail + `"}`))
}
