// Package web serves the browser UI: player setup, the game board and the leaderboard.
package web

import (
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/oxgrid/tictactoe/internal/dependencies/random"
	"github.com/oxgrid/tictactoe/internal/services/stats"
	"github.com/oxgrid/tictactoe/internal/web/handler"
	"github.com/oxgrid/tictactoe/internal/web/middleware"
)

// RouterConfig holds configuration for the web routes
type RouterConfig struct {
	Logger       *slog.Logger
	StatsService *stats.Service
	Random       random.Random // drives the computer opponent
	// SecureCookies marks the player cookie Secure, for HTTPS deployments
	SecureCookies bool
}

// Register adds the browser routes to r. GET / only matches requests that
// accept HTML, so JSON clients keep reaching the API root.
func Register(r *mux.Router, cfg RouterConfig) {
	playHandler := handler.NewPlayHandler(cfg.StatsService, cfg.Random, cfg.Logger, cfg.SecureCookies)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.StatsService, cfg.Logger)

	lookupFailed := func(w http.ResponseWriter, r *http.Request, err error) {
		cfg.Logger.Error("loading player failed", "error", err)
		handler.RenderError(w, r, http.StatusServiceUnavailable, "Player statistics are unavailable right now.")
	}

	// Recovery sits inside the API middleware so panics here get an HTML page
	page := func(h http.HandlerFunc) http.Handler {
		return middleware.Recovery(cfg.Logger)(
			middleware.Flash()(
				middleware.Player(cfg.StatsService, lookupFailed)(h),
			),
		)
	}

	r.Handle("/", page(playHandler.Home)).Methods(http.MethodGet).MatcherFunc(AcceptsHTML)
	r.Handle("/leaderboard", page(leaderboardHandler.View)).Methods(http.MethodGet)

	play := r.PathPrefix("/play").Subrouter()
	play.Handle("/setup", page(playHandler.Setup)).Methods(http.MethodPost)
	play.Handle("/move", page(playHandler.Move)).Methods(http.MethodPost)
	play.Handle("/sync", page(playHandler.Sync)).Methods(http.MethodPost)
	play.Handle("/new", page(playHandler.New)).Methods(http.MethodPost)
	play.Handle("/leave", page(playHandler.Leave)).Methods(http.MethodPost)
}

// AcceptsHTML matches requests whose Accept header lists text/html
func AcceptsHTML(r *http.Request, _ *mux.RouteMatch) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == "text/html" {
			return true
		}
	}
	return false
}
