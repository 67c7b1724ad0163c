package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/oxgrid/tictactoe/internal/services/stats"
	"github.com/oxgrid/tictactoe/internal/web/templates/pages"
)

// LeaderboardHandler renders the leaderboard page
type LeaderboardHandler struct {
	stats  *stats.Service
	logger *slog.Logger
}

// NewLeaderboardHandler creates a new LeaderboardHandler
func NewLeaderboardHandler(statsService *stats.Service, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		stats:  statsService,
		logger: logger,
	}
}

// View handles GET /leaderboard?limit=N
func (h *LeaderboardHandler) View(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.stats.GetLeaderboard(r.Context(), limit)
	if err != nil {
		h.logger.Error("loading leaderboard failed", "error", err)
		RenderError(w, r, http.StatusServiceUnavailable, "The leaderboard is unavailable right now.")
		return
	}

	render(w, r, http.StatusOK, pages.Leaderboard(pages.LeaderboardData{
		PageData: pageData(r, "Leaderboard"),
		Entries:  entries,
	}))
}
