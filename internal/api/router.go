package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/oxgrid/tictactoe/internal/api/apierr"
	"github.com/oxgrid/tictactoe/internal/api/handler"
	apimw "github.com/oxgrid/tictactoe/internal/api/middleware"
	"github.com/oxgrid/tictactoe/internal/metrics"
	"github.com/oxgrid/tictactoe/internal/middleware"
	"github.com/oxgrid/tictactoe/internal/services/stats"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger       *slog.Logger
	StatsService *stats.Service
	Metrics      *metrics.Recorder // nil disables request metrics
	// ServeMetrics mounts the Prometheus endpoint at /metrics
	ServeMetrics bool
	// ExposeErrors includes internal error text in 500 responses
	ExposeErrors bool
	// Mount registers extra routes, such as the browser UI, ahead of the JSON root
	Mount func(r *mux.Router)
}

// NewRouter creates a new API router with all routes configured.
// Unknown paths and methods under it answer 404 "Route not found".
func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	// {name} may carry an escaped "/"
	r.UseEncodedPath()

	errs := apierr.NewWriter(cfg.Logger, cfg.ExposeErrors)

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.StatsService, errs)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.StatsService, errs)
	systemHandler := handler.NewSystemHandler(cfg.StatsService, errs)

	r.Use(apimw.Recovery(cfg.Logger, errs))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics, apimw.RouteTemplate))

	if cfg.Mount != nil {
		cfg.Mount(r)
	}
	r.HandleFunc("/", systemHandler.Root).Methods(http.MethodGet)

	if cfg.ServeMetrics && cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	// Player routes
	api.HandleFunc("/players", playerHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/players/name/{name}", playerHandler.GetByName).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}/stats", playerHandler.UpdateStats).Methods(http.MethodPost)

	// Leaderboard
	api.HandleFunc("/leaderboard", leaderboardHandler.Get).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", systemHandler.Health).Methods(http.MethodGet)

	// Middleware registered with Use does not wrap these
	notFound := chain(http.HandlerFunc(systemHandler.NotFound),
		apimw.Recovery(cfg.Logger, errs),
		middleware.Logging(cfg.Logger),
		middleware.Metrics(cfg.Metrics, apimw.RouteTemplate),
	)
	r.NotFoundHandler = notFound
	r.MethodNotAllowedHandler = notFound

	return r
}

// chain applies middleware so the first one listed runs outermost
func chain(h http.Handler, mws ...mux.MiddlewareFunc) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
