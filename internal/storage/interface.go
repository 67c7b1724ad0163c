package storage

import (
	"context"

	"github.com/oxgrid/tictactoe/internal/model"
)

// PlayerStore defines the interface for player persistence.
// Implementations return model sentinel errors for expected failures.
type PlayerStore interface {
	// CreatePlayer persists a new player. Returns model.ErrPlayerNameTaken
	// if a player with the same name already exists.
	CreatePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	// GetPlayerByName looks up a player by exact, case-sensitive name
	GetPlayerByName(ctx context.Context, name string) (*model.Player, error)
	// ListPlayers returns every player, most recently created first
	ListPlayers(ctx context.Context) ([]*model.Player, error)

	// IncrementStats atomically increments the counter for result and the
	// total, returning the updated record. Unknown ids fail with model.ErrPlayerNotFound.
	IncrementStats(ctx context.Context, id model.PlayerID, result model.GameResult) (*model.Player, error)
	// TopPlayers returns up to limit players in leaderboard order (see model.RanksBefore)
	TopPlayers(ctx context.Context, limit int) ([]*model.Player, error)

	Ping(ctx context.Context) error
	Close() error
}
