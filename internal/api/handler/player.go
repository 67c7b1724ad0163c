package handler

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/oxgrid/tictactoe/internal/api/apierr"
	"github.com/oxgrid/tictactoe/internal/api/request"
	"github.com/oxgrid/tictactoe/internal/api/response"
	"github.com/oxgrid/tictactoe/internal/model"
	"github.com/oxgrid/tictactoe/internal/services/stats"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	stats  *stats.Service
	errors *apierr.Writer
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(statsService *stats.Service, errors *apierr.Writer) *PlayerHandler {
	return &PlayerHandler{
		stats:  statsService,
		errors: errors,
	}
}

// Create handles POST /api/players
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreatePlayerRequest
	if err := request.Decode(w, r, &req); err != nil {
		h.errors.WriteError(w, r, NewInvalidRequestError("Invalid JSON body"))
		return
	}

	player, err := h.stats.CreatePlayer(r.Context(), req.Name)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlayerResponse{
		Success: true,
		Player:  response.PlayerFromModel(player),
	})
}

// List handles GET /api/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.stats.ListPlayers(r.Context())
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayersResponse{
		Success: true,
		Players: response.PlayersFromModel(players),
		Count:   len(players),
	})
}

// Get handles GET /api/players/{id}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.PlayerID(mux.Vars(r)["id"])

	player, err := h.stats.GetPlayer(r.Context(), id)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerResponse{
		Success: true,
		Player:  response.PlayerFromModel(player),
	})
}

// GetByName handles GET /api/players/name/{name}
func (h *PlayerHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(mux.Vars(r)["name"])
	if err != nil {
		h.errors.WriteError(w, r, NewInvalidRequestError("Invalid player name"))
		return
	}

	player, err := h.stats.GetPlayerByName(r.Context(), name)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerResponse{
		Success: true,
		Player:  response.PlayerFromModel(player),
	})
}

// UpdateStats handles POST /api/players/{id}/stats
func (h *PlayerHandler) UpdateStats(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateStatsRequest
	if err := request.Decode(w, r, &req); err != nil {
		h.errors.WriteError(w, r, NewInvalidRequestError("Invalid JSON body"))
		return
	}

	// The result is validated before the player is looked up
	result, err := model.ParseGameResult(req.Result)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	id := model.PlayerID(mux.Vars(r)["id"])
	player, err := h.stats.UpdatePlayerStats(r.Context(), id, result)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StatsResponse{
		Success: true,
		Player:  response.PlayerFromModel(player),
		Message: "Player stats updated: " + string(result),
	})
}
