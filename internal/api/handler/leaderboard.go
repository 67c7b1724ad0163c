package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/oxgrid/tictactoe/internal/api/apierr"
	"github.com/oxgrid/tictactoe/internal/api/response"
	"github.com/oxgrid/tictactoe/internal/services/stats"
)

// LeaderboardHandler serves the ranked player list
type LeaderboardHandler struct {
	stats  *stats.Service
	errors *apierr.Writer
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(statsService *stats.Service, errors *apierr.Writer) *LeaderboardHandler {
	return &LeaderboardHandler{
		stats:  statsService,
		errors: errors,
	}
}

// Get handles GET /api/leaderboard?limit=N
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	limit := ParseLimit(r.URL.Query().Get("limit"))

	entries, err := h.stats.GetLeaderboard(r.Context(), limit)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardResponse{
		Success:     true,
		Leaderboard: response.LeaderboardFromModel(entries),
		Count:       len(entries),
	})
}

// ParseLimit reads the leading integer of s; anything unparsable is 0,
// which the stats service treats as "use the default". A positive value
// too large for an int is clamped to the maximum.
func ParseLimit(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[0] == '-' || s[0] == '+')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) && s[0] != '-' {
		return stats.MaxLeaderboardLimit
	}
	if err != nil {
		return 0
	}
	return n
}
