// Package metrics exposes Prometheus instrumentation for the server.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oxgrid/tictactoe/internal/model"
)

const namespace = "tictactoe"

// Recorder owns a private registry so tests and multiple servers never collide
type Recorder struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	playersCreated  prometheus.Counter
	gameResults     *prometheus.CounterVec
	auditViolations prometheus.Gauge
}

// New creates a Recorder with all collectors registered
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route template and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		playersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "players_created_total",
			Help:      "Players registered.",
		}),
		gameResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "game_results_total",
			Help:      "Game results recorded, by result.",
		}, []string{"result"}),
		auditViolations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stats_audit_violations",
			Help:      "Players whose counters failed the last stats audit.",
		}),
	}

	r.registry.MustRegister(
		r.httpRequests,
		r.httpDuration,
		r.playersCreated,
		r.gameResults,
		r.auditViolations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Pre-create result series so they export as zero before the first game
	for _, res := range []model.GameResult{model.ResultWin, model.ResultLoss, model.ResultTie} {
		r.gameResults.WithLabelValues(string(res))
	}
	return r
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveRequest records one completed HTTP request
func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// PlayerCreated counts a newly registered player
func (r *Recorder) PlayerCreated() {
	if r == nil {
		return
	}
	r.playersCreated.Inc()
}

// GameResult counts a recorded game result
func (r *Recorder) GameResult(result model.GameResult) {
	if r == nil {
		return
	}
	r.gameResults.WithLabelValues(string(result)).Inc()
}

// SetAuditViolations publishes the outcome of the latest stats audit
func (r *Recorder) SetAuditViolations(n int) {
	if r == nil {
		return
	}
	r.auditViolations.Set(float64(n))
}
