package redis

import (
	"fmt"

	"github.com/oxgrid/tictactoe/internal/model"
)

// Key prefix for all player data
const keyPrefix = "tictactoe"

// Hash fields of a player record
const (
	fieldID         = "id"
	fieldName       = "name"
	fieldWins       = "wins"
	fieldLosses     = "losses"
	fieldTies       = "ties"
	fieldTotalGames = "total_games"
	fieldCreatedAt  = "created_at"
)

// playerKey returns the Redis key for a player HASH
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// nameIndexKey returns the Redis key for the name -> player_id index
func nameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:name:%s", keyPrefix, name)
}

// createdIndexKey returns the ZSET of player ids scored by creation time
func createdIndexKey() string {
	return fmt.Sprintf("%s:idx:created", keyPrefix)
}

// rankingIndexKey returns the ZSET of player ids scored by rankScore
func rankingIndexKey() string {
	return fmt.Sprintf("%s:idx:ranking", keyPrefix)
}

// rankScore orders players by wins descending then total games ascending.
// The order holds while a player has fewer than 1e6 games.
func rankScore(wins, totalGames int) float64 {
	return float64(wins)*1e6 - float64(totalGames)
}
