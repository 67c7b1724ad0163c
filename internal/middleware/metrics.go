package middleware

import (
	"net/http"
	"time"

	"github.com/oxgrid/tictactoe/internal/metrics"
)

// RouteLabel names the route that served a request, e.g. a path template.
// It must return a bounded set of values.
type RouteLabel func(r *http.Request) string

// Metrics records request counts and latencies on rec
func Metrics(rec *metrics.Recorder, route RouteLabel) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rec == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := WrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			rec.ObserveRequest(r.Method, route(r), wrapped.Status(), time.Since(start))
		})
	}
}
