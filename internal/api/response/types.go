package response

import (
	"github.com/oxgrid/tictactoe/internal/model"
)

// API metadata returned from the root route
const (
	ServiceName    = "Tic-Tac-Toe API"
	ServiceVersion = "1.0.0"
)

// Player represents a player in API responses
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Ties       int    `json:"ties"`
	TotalGames int    `json:"totalGames"`
	CreatedAt  int64  `json:"createdAt"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:         string(p.ID),
		Name:       p.Name,
		Wins:       p.Wins,
		Losses:     p.Losses,
		Ties:       p.Ties,
		TotalGames: p.TotalGames,
		CreatedAt:  p.CreatedAt,
	}
}

// ToModel converts back to a model.Player (used by API clients)
func (p Player) ToModel() *model.Player {
	return &model.Player{
		ID:         model.PlayerID(p.ID),
		Name:       p.Name,
		Wins:       p.Wins,
		Losses:     p.Losses,
		Ties:       p.Ties,
		TotalGames: p.TotalGames,
		CreatedAt:  p.CreatedAt,
	}
}

// PlayersFromModel converts a slice of players
func PlayersFromModel(players []*model.Player) []Player {
	out := make([]Player, len(players))
	for i, p := range players {
		out[i] = PlayerFromModel(p)
	}
	return out
}

// LeaderboardEntry is a player record plus its rank and formatted win rate
type LeaderboardEntry struct {
	Player
	Rank    int    `json:"rank"`
	WinRate string `json:"winRate"`
}

// LeaderboardFromModel converts leaderboard entries
func LeaderboardFromModel(entries []model.LeaderboardEntry) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		out[i] = LeaderboardEntry{
			Player:  PlayerFromModel(&e.Player),
			Rank:    e.Rank,
			WinRate: e.WinRate,
		}
	}
	return out
}

// RootResponse is served from GET /
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// HealthResponse is served from GET /api/health
type HealthResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

// PlayerResponse wraps a single player
type PlayerResponse struct {
	Success bool   `json:"success"`
	Player  Player `json:"player"`
}

// PlayersResponse wraps a list of players
type PlayersResponse struct {
	Success bool     `json:"success"`
	Players []Player `json:"players"`
	Count   int      `json:"count"`
}

// StatsResponse is returned after recording a game result
type StatsResponse struct {
	Success bool   `json:"success"`
	Player  Player `json:"player"`
	Message string `json:"message"`
}

// LeaderboardResponse wraps the ranked players
type LeaderboardResponse struct {
	Success     bool               `json:"success"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	Count       int                `json:"count"`
}
