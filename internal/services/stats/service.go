// Package stats manages player records, game result reporting and the leaderboard.
package stats

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/oxgrid/tictactoe/internal/dependencies/clock"
	"github.com/oxgrid/tictactoe/internal/dependencies/ids"
	"github.com/oxgrid/tictactoe/internal/metrics"
	"github.com/oxgrid/tictactoe/internal/model"
	"github.com/oxgrid/tictactoe/internal/storage"
)

const (
	// DefaultLeaderboardLimit is used when no positive limit is requested
	DefaultLeaderboardLimit = 10
	// MaxLeaderboardLimit caps the number of leaderboard entries returned
	MaxLeaderboardLimit = 100
)

// Service is the player statistics store used by the API and web handlers
type Service struct {
	store        storage.PlayerStore
	clock        clock.Clock
	ids          ids.Generator
	metrics      *metrics.Recorder
	logger       *slog.Logger
	defaultLimit int
}

// Option customises a Service
type Option func(*Service)

// WithMetrics records player and result counters on m
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDefaultLimit overrides the leaderboard size used for non-positive limits
func WithDefaultLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.defaultLimit = min(n, MaxLeaderboardLimit)
		}
	}
}

// New creates a new stats Service
func New(
	store storage.PlayerStore,
	clock clock.Clock,
	ids ids.Generator,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		store:        store,
		clock:        clock,
		ids:          ids,
		logger:       logger,
		defaultLimit: DefaultLeaderboardLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeName trims surrounding whitespace and validates the result
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > model.MaxNameLength {
		return "", model.ErrNameTooLong
	}
	return name, nil
}

// CreatePlayer registers a new player with zeroed statistics
func (s *Service) CreatePlayer(ctx context.Context, name string) (*model.Player, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	player := model.NewPlayer(s.ids.PlayerID(), name, s.clock.Now())
	if err := s.store.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.metrics.PlayerCreated()
	s.logger.Info("player created", "player_id", player.ID, "name", player.Name)
	return player, nil
}

// GetPlayer returns a player by id
func (s *Service) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return s.store.GetPlayer(ctx, id)
}

// GetPlayerByName returns a player by exact name
func (s *Service) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	return s.store.GetPlayerByName(ctx, name)
}

// ListPlayers returns all players, newest first
func (s *Service) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	return s.store.ListPlayers(ctx)
}

// UpdatePlayerStats records one finished game for the player and returns the updated record
func (s *Service) UpdatePlayerStats(ctx context.Context, id model.PlayerID, result model.GameResult) (*model.Player, error) {
	if !result.Valid() {
		return nil, model.ErrInvalidResult
	}

	player, err := s.store.IncrementStats(ctx, id, result)
	if err != nil {
		return nil, err
	}

	s.metrics.GameResult(result)
	s.logger.Info("player stats updated",
		"player_id", player.ID,
		"result", result,
		"total_games", player.TotalGames,
	)
	return player, nil
}

// GetLeaderboard returns up to limit ranked players. Non-positive limits use the
// default and limits above MaxLeaderboardLimit are capped.
func (s *Service) GetLeaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	limit = s.effectiveLimit(limit)

	players, err := s.store.TopPlayers(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, len(players))
	for i, p := range players {
		entries[i] = model.LeaderboardEntry{
			Rank:    i + 1,
			Player:  *p,
			WinRate: WinRate(p),
		}
	}
	return entries, nil
}

func (s *Service) effectiveLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	return min(limit, MaxLeaderboardLimit)
}

// WinRate formats wins / totalGames as a percentage with one decimal place
func WinRate(p *model.Player) string {
	if p.TotalGames == 0 {
		return "0.0"
	}
	rate := float64(p.Wins) / float64(p.TotalGames) * 100
	return strconv.FormatFloat(rate, 'f', 1, 64)
}

// Ping checks that the backing store is reachable
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Audit scans every player and returns the ids whose counters are inconsistent.
// The violation count is published as a metric.
func (s *Service) Audit(ctx context.Context) ([]model.PlayerID, error) {
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}

	var bad []model.PlayerID
	for _, p := range players {
		if p.StatsConsistent() {
			continue
		}
		bad = append(bad, p.ID)
		s.logger.Warn("player stats inconsistent",
			"player_id", p.ID,
			"wins", p.Wins,
			"losses", p.Losses,
			"ties", p.Ties,
			"total_games", p.TotalGames,
		)
	}

	s.metrics.SetAuditViolations(len(bad))
	s.logger.Info("stats audit complete", "players", len(players), "violations", len(bad))
	return bad, nil
}
