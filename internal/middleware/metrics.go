package middleware

import (
	"net/http"
	"time"

	"github.com/benvon/cinemate/internal/metrics"
	"github.com/gorilla/mux"
)

// Metrics records request counts and latency per route template
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := newStatusRecorder(w)

		next.ServeHTTP(wrapped, r)

		metrics.RecordHTTPRequest(r.Method, routeTemplate(r), wrapped.statusCode, time.Since(start))
	})
}

// routeTemplate keeps label cardinality bounded: IDs never become labels
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
