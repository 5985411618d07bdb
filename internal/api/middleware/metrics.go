package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rhale/trailtime/internal/metrics"
	"github.com/rhale/trailtime/internal/middleware"
)

// Metrics creates middleware recording request latency per route template
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &middleware.ResponseWriter{ResponseWriter: w}

			next.ServeHTTP(wrapped, r)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}

			status := wrapped.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.ObserveHTTPRequest(r.Method, route, status, time.Since(start).Seconds())
		})
	}
}
